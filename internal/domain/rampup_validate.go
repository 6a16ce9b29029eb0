package domain

import "fmt"

// ValidatePlan checks the invariants of a proposed set of rampup entries
// and returns the first violation as a [*ValidationError]. Checks run in
// a fixed order: the plan is not empty, every percentage lies in [0,100],
// percentages sum to 100, versions are unique, and unstable entries carry
// a zero percentage.
//
// Stored plans are trusted at resolution time; only plan authoring calls
// ValidatePlan.
func ValidatePlan(entries []RampupEntry) error {
	if len(entries) == 0 {
		return &ValidationError{
			Reason: ValidationEmptyPlan,
			Detail: "missing rampup entries",
		}
	}

	total := 0
	for _, e := range entries {
		if e.Percentage < 0 || e.Percentage > 100 {
			return &ValidationError{
				Reason:  ValidationPercentageRange,
				Version: e.Version,
				Detail:  fmt.Sprintf("rampup percentage %d of version %s must be between 0 and 100", e.Percentage, e.Version),
			}
		}
		total += e.Percentage
	}
	if total != 100 {
		return &ValidationError{
			Reason: ValidationPercentageSum,
			Detail: fmt.Sprintf("total rampup percentage for all versions must be 100, got %d", total),
		}
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Version]; dup {
			return &ValidationError{
				Reason:  ValidationDuplicateVersion,
				Version: e.Version,
				Detail:  fmt.Sprintf("duplicate image version: %s", e.Version),
			}
		}
		seen[e.Version] = struct{}{}
	}

	for _, e := range entries {
		if e.StabilityTag == StabilityUnstable && e.Percentage != 0 {
			return &ValidationError{
				Reason:  ValidationUnstableRampedUp,
				Version: e.Version,
				Detail:  fmt.Sprintf("image version %s is marked unstable and its rampup percentage must be 0", e.Version),
			}
		}
	}
	return nil
}
