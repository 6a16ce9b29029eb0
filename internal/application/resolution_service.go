package application

import (
	"context"
	"errors"
	"fmt"

	slogcontext "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

const defaultFlowConcurrency = 8

// FlowResolution is the outcome of resolving the job types of one flow.
// Err is set when some job type of the flow could not be bound; it
// matches [domain.ErrUnresolvedImageTypes].
type FlowResolution struct {
	Flow     string
	Versions map[string]string
	Err      error
}

// ResolutionService answers which image version each image type runs.
type ResolutionService struct {
	Resolver domain.ImageVersionResolver
	Types    domain.ImageTypeRepository
	// Concurrency bounds how many flows ResolveForFlows resolves at once.
	Concurrency int
}

// ResolveVersions resolves a batch of image types under the given
// selection strategy.
func (s *ResolutionService) ResolveVersions(ctx context.Context, imageTypes []string, spec domain.SelectionStrategySpec) (map[string]string, error) {
	return s.Resolver.ResolveVersions(ctx, imageTypes, spec)
}

// ResolveAll resolves every registered image type.
func (s *ResolutionService) ResolveAll(ctx context.Context, spec domain.SelectionStrategySpec) (map[string]string, error) {
	types, err := s.Types.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list image types: %w", err)
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name
	}
	return s.Resolver.ResolveVersions(ctx, names, spec)
}

// ResolveForFlows resolves the job types of several flows concurrently,
// keying each flow's draws by its name. Results are in input order. A
// flow that cannot be fully bound reports it in its [FlowResolution];
// any other failure cancels the remaining work and is returned.
func (s *ResolutionService) ResolveForFlows(ctx context.Context, flows []domain.Flow) ([]FlowResolution, error) {
	results := make([]FlowResolution, len(flows))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency())

	for i, f := range flows {
		eg.Go(func() error {
			name := f.Name()
			versions, err := s.Resolver.ResolveVersions(egctx, domain.JobTypes(f.Root), domain.DeterministicSelection(name))
			if err != nil {
				if errors.Is(err, domain.ErrUnresolvedImageTypes) {
					slogcontext.FromCtx(ctx).WarnContext(egctx, "flow has unresolved image types", "flow", name, "error", err)
					results[i] = FlowResolution{Flow: name, Err: err}
					return nil
				}
				return fmt.Errorf("resolve flow %s: %w", name, err)
			}
			results[i] = FlowResolution{Flow: name, Versions: versions}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *ResolutionService) concurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return defaultFlowConcurrency
}
