package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	slogcontext "github.com/veqryn/slog-context"
)

// VersionResolver binds a set of image types to concrete versions. Image
// types with an active rampup plan are resolved through the plan; the
// rest, together with any type whose plan yielded nothing, fall back to
// their latest active version.
type VersionResolver struct {
	Plans    ActivePlanSource
	Versions ActiveVersionSource
	Draws    DrawSourceFactory
}

// ResolveVersions returns a version for every requested image type, or an
// [*AggregateResolutionError] naming every type that could not be
// resolved. No partial result is returned with an error. Failures of the
// plan or version sources are returned wrapped and never match
// [ErrUnresolvedImageTypes].
func (r *VersionResolver) ResolveVersions(ctx context.Context, imageTypes []string, spec SelectionStrategySpec) (map[string]string, error) {
	logger := slogcontext.FromCtx(ctx)

	draws, err := r.drawFactory().DrawSource(spec)
	if err != nil {
		return nil, err
	}

	requested := uniqueSorted(imageTypes)
	if len(requested) == 0 {
		return map[string]string{}, nil
	}

	plans, err := r.Plans.FetchActivePlans(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("fetch rampup plans: %w", err)
	}

	resolved := make(map[string]string, len(requested))
	causes := make(map[string]error)
	var remaining []string
	for _, it := range requested {
		var plan *RampupPlan
		if p, ok := plans[it]; ok {
			plan = &p
		}
		version, err := ResolveRampup(it, plan, draws)
		if err != nil {
			if errors.Is(err, ErrPlanIntegrity) {
				logger.ErrorContext(ctx, "rampup plan failed integrity check",
					slog.String("image_type", it), slog.Int64("plan_id", int64(plan.ID)), slog.Any("error", err))
			}
			causes[it] = err
			remaining = append(remaining, it)
			continue
		}
		logger.InfoContext(ctx, "selected image version from rampup plan",
			slog.String("image_type", it), slog.String("version", version), slog.Int64("plan_id", int64(plan.ID)))
		resolved[it] = version
	}

	if len(remaining) > 0 {
		logger.DebugContext(ctx, "falling back to latest active versions", slog.Any("image_types", remaining))
		active, err := r.Versions.LatestActiveVersions(ctx, remaining)
		if err != nil {
			return nil, fmt.Errorf("fetch latest active versions: %w", err)
		}
		for _, v := range active {
			if _, pending := causes[v.ImageType]; !pending {
				continue
			}
			resolved[v.ImageType] = v.Version
			delete(causes, v.ImageType)
			logger.InfoContext(ctx, "selected latest active image version",
				slog.String("image_type", v.ImageType), slog.String("version", v.Version))
		}
	}

	if len(causes) > 0 {
		unresolved := make([]string, 0, len(causes))
		for it := range causes {
			unresolved = append(unresolved, it)
		}
		return nil, NewAggregateResolutionError(unresolved, causes)
	}
	return resolved, nil
}

func (r *VersionResolver) drawFactory() DrawSourceFactory {
	if r.Draws != nil {
		return r.Draws
	}
	return DefaultDrawSourceFactory{}
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
