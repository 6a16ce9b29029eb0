package domain

import "context"

// ImageTypeRepository persists and retrieves image types.
type ImageTypeRepository interface {
	Create(ctx context.Context, t ImageType) error
	Get(ctx context.Context, name string) (ImageType, error)
	List(ctx context.Context) ([]ImageType, error)
}

// ImageVersionRepository persists image versions and answers the
// latest-active-version lookup used as the resolution fallback.
type ImageVersionRepository interface {
	Create(ctx context.Context, v ImageVersion) (int64, error)
	Get(ctx context.Context, imageType, version string) (ImageVersion, error)
	List(ctx context.Context, imageType string) ([]ImageVersion, error)
	UpdateState(ctx context.Context, imageType, version string, state VersionState, modifiedBy string) error
	ActiveVersionSource
}

// ActiveVersionSource returns, for each of the given image types that has
// one, its most recently created active version. Types without an active
// version are absent from the result.
type ActiveVersionSource interface {
	LatestActiveVersions(ctx context.Context, imageTypes []string) ([]ImageVersion, error)
}

// RampupPlanRepository persists rampup plans together with their entries.
// At most one plan per image type is active at any time.
type RampupPlanRepository interface {
	// Create stores plan and, when plan.Active is set, deactivates any
	// other active plan of the same image type in the same transaction.
	Create(ctx context.Context, plan RampupPlan) (PlanID, error)
	// UpdateActive replaces the entries of the active plan of imageType.
	UpdateActive(ctx context.Context, imageType string, entries []RampupEntry, modifiedBy string) error
	GetActive(ctx context.Context, imageType string) (RampupPlan, error)
	ActivePlanSource
}

// ActivePlanSource returns the active plan of each requested image type.
// Image types without an active plan are absent from the result.
type ActivePlanSource interface {
	FetchActivePlans(ctx context.Context, imageTypes []string) (map[string]RampupPlan, error)
}

// DispatchRecordRepository persists the image bindings chosen for flow
// executions.
type DispatchRecordRepository interface {
	Put(ctx context.Context, record DispatchRecord) error
	Get(ctx context.Context, executionID ExecutionID) (DispatchRecord, error)
	ListByFlow(ctx context.Context, flowName string) ([]DispatchRecord, error)
}
