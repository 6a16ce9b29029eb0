package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

func entry(version string, pct int, tag domain.StabilityTag) domain.RampupEntry {
	return domain.RampupEntry{Version: version, Percentage: pct, StabilityTag: tag}
}

func requireValidationReason(t *testing.T, err error, want domain.ValidationReason) *domain.ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T: %v", err, err)
	assert.Equal(t, want, verr.Reason)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	return verr
}

func TestValidatePlan_AcceptsValidPlans(t *testing.T) {
	plans := map[string][]domain.RampupEntry{
		"single": {entry("1.0.0", 100, domain.StabilityStable)},
		"three": {
			entry("1.1.1", 10, domain.StabilityStable),
			entry("1.1.2", 30, domain.StabilityStable),
			entry("1.1.3", 60, domain.StabilityExperimental),
		},
		"unstable at zero": {
			entry("1.0.0", 0, domain.StabilityUnstable),
			entry("2.0.0", 100, domain.StabilityStable),
		},
	}
	for name, entries := range plans {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, domain.ValidatePlan(entries))
		})
	}
}

func TestValidatePlan_RejectsSumOffByOne(t *testing.T) {
	for _, second := range []int{29, 31} {
		entries := []domain.RampupEntry{
			entry("1.0.0", 70, domain.StabilityStable),
			entry("1.1.0", second, domain.StabilityStable),
		}
		requireValidationReason(t, domain.ValidatePlan(entries), domain.ValidationPercentageSum)
	}
}

func TestValidatePlan_RejectsEmptyPlan(t *testing.T) {
	requireValidationReason(t, domain.ValidatePlan(nil), domain.ValidationEmptyPlan)
	requireValidationReason(t, domain.ValidatePlan([]domain.RampupEntry{}), domain.ValidationEmptyPlan)
}

func TestValidatePlan_RejectsDuplicateVersion(t *testing.T) {
	entries := []domain.RampupEntry{
		entry("1.0.0", 50, domain.StabilityStable),
		entry("1.0.0", 50, domain.StabilityStable),
	}
	verr := requireValidationReason(t, domain.ValidatePlan(entries), domain.ValidationDuplicateVersion)
	assert.Equal(t, "1.0.0", verr.Version)
	assert.Contains(t, verr.Error(), "duplicate image version: 1.0.0")
}

func TestValidatePlan_RejectsUnstableWithNonZeroPercentage(t *testing.T) {
	for _, pct := range []int{1, 50, 100} {
		entries := []domain.RampupEntry{
			entry("1.0.0", pct, domain.StabilityUnstable),
			entry("2.0.0", 100-pct, domain.StabilityStable),
		}
		verr := requireValidationReason(t, domain.ValidatePlan(entries), domain.ValidationUnstableRampedUp)
		assert.Equal(t, "1.0.0", verr.Version)
	}
}

func TestValidatePlan_RejectsPercentageOutOfRange(t *testing.T) {
	entries := []domain.RampupEntry{
		entry("1.0.0", -10, domain.StabilityStable),
		entry("2.0.0", 110, domain.StabilityStable),
	}
	requireValidationReason(t, domain.ValidatePlan(entries), domain.ValidationPercentageRange)
}

func TestValidatePlan_ReportsFirstViolationOnly(t *testing.T) {
	// Sum is wrong and the version is duplicated; the sum check runs first.
	entries := []domain.RampupEntry{
		entry("1.0.0", 10, domain.StabilityUnstable),
		entry("1.0.0", 10, domain.StabilityStable),
	}
	requireValidationReason(t, domain.ValidatePlan(entries), domain.ValidationPercentageSum)

	// Sum is right, duplicate and unstable both violated; duplicate wins.
	entries = []domain.RampupEntry{
		entry("1.0.0", 50, domain.StabilityUnstable),
		entry("1.0.0", 50, domain.StabilityStable),
	}
	requireValidationReason(t, domain.ValidatePlan(entries), domain.ValidationDuplicateVersion)
}
