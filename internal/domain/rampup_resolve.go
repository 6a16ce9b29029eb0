package domain

import "fmt"

// ResolveRampup selects a version of imageType from its active plan.
//
// A nil plan yields an [*UnresolvedError] with reason [ErrNoActivePlan].
// A draw that matches no entry, or that lands on an unstable or
// zero-percentage entry, yields reason [ErrPlanIntegrity]; the plan should
// have been rejected by [ValidatePlan] and no unstable version is ever
// returned. ResolveRampup performs no I/O and never consults the latest
// active version.
func ResolveRampup(imageType string, plan *RampupPlan, draws DrawSource) (string, error) {
	if plan == nil {
		return "", &UnresolvedError{ImageType: imageType, Reason: ErrNoActivePlan}
	}

	draw := draws.Draw(imageType)
	entry, ok := SelectWeighted(plan.Entries, draw)
	if !ok {
		return "", &UnresolvedError{
			ImageType: imageType,
			PlanID:    plan.ID,
			Reason:    ErrPlanIntegrity,
			Detail:    fmt.Sprintf("draw %d matched no entry of plan %d", draw, plan.ID),
		}
	}
	if entry.StabilityTag == StabilityUnstable || entry.Percentage == 0 {
		return "", &UnresolvedError{
			ImageType: imageType,
			PlanID:    plan.ID,
			Reason:    ErrPlanIntegrity,
			Detail:    fmt.Sprintf("draw %d selected unstable version %s of plan %d", draw, entry.Version, plan.ID),
		}
	}
	return entry.Version, nil
}
