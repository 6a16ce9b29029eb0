// Package dispatchrecordrepotest provides contract tests for
// [domain.DispatchRecordRepository] implementations.
package dispatchrecordrepotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// Factory creates a fresh [domain.DispatchRecordRepository] for each test
// invocation.
type Factory func(t *testing.T) domain.DispatchRecordRepository

// Run exercises the [domain.DispatchRecordRepository] contract.
func Run(t *testing.T, factory Factory) {
	now := time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)

	t.Run("PutAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		rec := domain.DispatchRecord{
			ExecutionID:   "exec-1",
			FlowName:      "reporting.nightly",
			ImageVersions: map[string]string{"spark": "3.2.0", "hive": "2.3.0"},
			ProxyUsers:    []string{"etl", "svc"},
			State:         domain.DispatchStateResolved,
			CreatedAt:     now,
		}

		if err := repo.Put(ctx, rec); err != nil {
			t.Fatalf("Put: %v", err)
		}

		got, err := repo.Get(ctx, "exec-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.FlowName != "reporting.nightly" {
			t.Errorf("FlowName = %q", got.FlowName)
		}
		if got.ImageVersions["spark"] != "3.2.0" || got.ImageVersions["hive"] != "2.3.0" {
			t.Errorf("ImageVersions = %v", got.ImageVersions)
		}
		if len(got.ProxyUsers) != 2 || got.ProxyUsers[0] != "etl" {
			t.Errorf("ProxyUsers = %v", got.ProxyUsers)
		}
		if got.State != domain.DispatchStateResolved {
			t.Errorf("State = %q, want resolved", got.State)
		}
		if !got.CreatedAt.Equal(now) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
		}
	})

	t.Run("PutUpserts", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if err := repo.Put(ctx, domain.DispatchRecord{
			ExecutionID: "exec-1", FlowName: "f", State: domain.DispatchStatePending, CreatedAt: now,
		}); err != nil {
			t.Fatalf("first Put: %v", err)
		}
		if err := repo.Put(ctx, domain.DispatchRecord{
			ExecutionID: "exec-1", FlowName: "f", State: domain.DispatchStateFailed,
			Error: "boom", CreatedAt: now,
		}); err != nil {
			t.Fatalf("second Put: %v", err)
		}

		got, err := repo.Get(ctx, "exec-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.State != domain.DispatchStateFailed || got.Error != "boom" {
			t.Errorf("got %q/%q, want failed/boom", got.State, got.Error)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("ListByFlow", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		for i, r := range []domain.DispatchRecord{
			{ExecutionID: "e1", FlowName: "a.flow", State: domain.DispatchStateResolved, CreatedAt: now},
			{ExecutionID: "e2", FlowName: "a.flow", State: domain.DispatchStateFailed, CreatedAt: now.Add(time.Minute)},
			{ExecutionID: "e3", FlowName: "b.flow", State: domain.DispatchStateResolved, CreatedAt: now},
		} {
			if err := repo.Put(ctx, r); err != nil {
				t.Fatalf("Put %d: %v", i, err)
			}
		}

		got, err := repo.ListByFlow(ctx, "a.flow")
		if err != nil {
			t.Fatalf("ListByFlow: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("ListByFlow: got %d, want 2", len(got))
		}
		if got[0].ExecutionID != "e1" || got[1].ExecutionID != "e2" {
			t.Errorf("order = [%s, %s], want [e1, e2]", got[0].ExecutionID, got[1].ExecutionID)
		}
	})
}
