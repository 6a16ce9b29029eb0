package syncworkflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fleetshift/imagemgmt/internal/domain"
	"github.com/fleetshift/imagemgmt/internal/infrastructure/sqlite"
	"github.com/fleetshift/imagemgmt/internal/infrastructure/syncworkflow"
)

type fixedResolver struct {
	versions map[string]string
	err      error
}

func (f fixedResolver) ResolveVersions(context.Context, []string, domain.SelectionStrategySpec) (map[string]string, error) {
	return f.versions, f.err
}

func testFlow() domain.Flow {
	return domain.Flow{
		Project: "reporting",
		FlowID:  "nightly",
		Root: domain.FlowNode{
			ID: "root",
			Nodes: []domain.FlowNode{
				{ID: "extract", Type: "spark"},
				{ID: "load", Type: "hive"},
			},
		},
	}
}

func TestDispatch_Sync(t *testing.T) {
	db := sqlite.OpenTestDB(t)
	records := &sqlite.DispatchRecordRepo{DB: db}
	wf := &domain.DispatchWorkflow{
		Resolver: fixedResolver{versions: map[string]string{"spark": "3.2.0", "hive": "2.3.0"}},
		Records:  records,
		Now:      func() time.Time { return time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC) },
	}

	runner, err := (&syncworkflow.Engine{}).DispatchRunner(wf)
	if err != nil {
		t.Fatalf("DispatchRunner: %v", err)
	}

	ctx := context.Background()
	h, err := runner.Run(ctx, domain.DispatchInput{ExecutionID: "e1", Flow: testFlow()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(h.WorkflowID(), "sync-") {
		t.Errorf("WorkflowID = %q, want sync- prefix", h.WorkflowID())
	}

	rec, err := h.AwaitResult(ctx)
	if err != nil {
		t.Fatalf("AwaitResult: %v", err)
	}
	if rec.State != domain.DispatchStateResolved {
		t.Errorf("State = %q, want resolved", rec.State)
	}

	stored, err := records.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.ImageVersions["spark"] != "3.2.0" || stored.ImageVersions["hive"] != "2.3.0" {
		t.Errorf("stored versions = %v", stored.ImageVersions)
	}
}

func TestDispatch_SyncUnresolved(t *testing.T) {
	db := sqlite.OpenTestDB(t)
	records := &sqlite.DispatchRecordRepo{DB: db}
	wf := &domain.DispatchWorkflow{
		Resolver: fixedResolver{err: domain.NewAggregateResolutionError([]string{"hive"}, nil)},
		Records:  records,
	}

	runner, _ := (&syncworkflow.Engine{}).DispatchRunner(wf)
	ctx := context.Background()
	h, err := runner.Run(ctx, domain.DispatchInput{ExecutionID: "e1", Flow: testFlow()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	rec, err := h.AwaitResult(ctx)
	if !errors.Is(err, domain.ErrUnresolvedImageTypes) {
		t.Fatalf("AwaitResult: got %v, want ErrUnresolvedImageTypes", err)
	}
	if rec.State != domain.DispatchStateFailed {
		t.Errorf("State = %q, want failed", rec.State)
	}
}
