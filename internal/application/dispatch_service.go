package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// DispatchService binds the job types of flow executions to image
// versions by running the dispatch workflow.
type DispatchService struct {
	Workflow domain.DispatchRunner
	Records  domain.DispatchRecordRepository
	// Deterministic keys rampup draws by flow name.
	Deterministic bool
}

// Dispatch runs the dispatch workflow for one execution of flow and waits
// for it to complete. When some job type cannot be bound the failed record
// is returned together with an error matching
// [domain.ErrUnresolvedImageTypes].
func (s *DispatchService) Dispatch(ctx context.Context, flow domain.Flow) (domain.DispatchRecord, error) {
	if flow.Project == "" || flow.FlowID == "" {
		return domain.DispatchRecord{}, fmt.Errorf("%w: flow project and id are required", domain.ErrInvalidArgument)
	}

	execID := domain.ExecutionID(uuid.NewString())
	handle, err := s.Workflow.Run(ctx, domain.DispatchInput{
		ExecutionID:   execID,
		Flow:          flow,
		Deterministic: s.Deterministic,
	})
	if err != nil {
		return domain.DispatchRecord{}, fmt.Errorf("start dispatch workflow: %w", err)
	}

	rec, err := handle.AwaitResult(ctx)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, domain.ErrUnresolvedImageTypes) {
		return rec, err
	}

	// Durable engines do not carry typed errors across the workflow
	// boundary; the stored record tells a failed binding apart.
	stored, getErr := s.Records.Get(ctx, execID)
	if getErr == nil && stored.State == domain.DispatchStateFailed {
		return stored, fmt.Errorf("%w: %s", domain.ErrUnresolvedImageTypes, stored.Error)
	}
	return domain.DispatchRecord{}, fmt.Errorf("dispatch workflow %s: %w", handle.WorkflowID(), err)
}

// Get retrieves the dispatch record of an execution.
func (s *DispatchService) Get(ctx context.Context, id domain.ExecutionID) (domain.DispatchRecord, error) {
	return s.Records.Get(ctx, id)
}

// ListByFlow returns every dispatch record of a flow.
func (s *DispatchService) ListByFlow(ctx context.Context, flowName string) ([]domain.DispatchRecord, error) {
	return s.Records.ListByFlow(ctx, flowName)
}
