package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates that a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource with the same identity
	// already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument indicates that a caller-provided value violates
	// a precondition.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoActivePlan indicates that an image type has no active rampup
	// plan. It triggers the latest-active-version fallback and is only
	// surfaced when the fallback fails as well.
	ErrNoActivePlan = errors.New("no active rampup plan")

	// ErrPlanIntegrity indicates that a stored rampup plan fails a
	// structural check it should have passed at authoring time.
	ErrPlanIntegrity = errors.New("rampup plan integrity violation")

	// ErrUnresolvedImageTypes indicates that one or more image types have
	// neither a usable rampup selection nor an active version.
	ErrUnresolvedImageTypes = errors.New("image types could not be resolved")
)

// ValidationReason identifies which plan invariant a [ValidationError]
// reports.
type ValidationReason string

const (
	ValidationEmptyPlan        ValidationReason = "empty-plan"
	ValidationPercentageRange  ValidationReason = "percentage-out-of-range"
	ValidationPercentageSum    ValidationReason = "percentage-sum"
	ValidationDuplicateVersion ValidationReason = "duplicate-version"
	ValidationUnstableRampedUp ValidationReason = "unstable-nonzero-percentage"
)

// ValidationError is returned when a proposed rampup plan violates one of
// its invariants. It matches [ErrInvalidArgument].
type ValidationError struct {
	Reason  ValidationReason
	Version string // offending version, if any
	Detail  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rampup plan: %s", e.Detail)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// UnresolvedError is returned by [ResolveRampup] when no version could be
// chosen from a plan. Reason is [ErrNoActivePlan] or [ErrPlanIntegrity].
type UnresolvedError struct {
	ImageType string
	PlanID    PlanID
	Reason    error
	Detail    string
}

func (e *UnresolvedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("image type %q: %v", e.ImageType, e.Reason)
	}
	return fmt.Sprintf("image type %q: %v: %s", e.ImageType, e.Reason, e.Detail)
}

func (e *UnresolvedError) Unwrap() error { return e.Reason }

// AggregateResolutionError names every image type of a batch that could
// not be resolved. It matches [ErrUnresolvedImageTypes] and every recorded
// cause.
type AggregateResolutionError struct {
	// ImageTypes is sorted.
	ImageTypes []string
	// Causes holds the last failure seen per image type, when one was
	// recorded before the fallback lookup.
	Causes map[string]error
}

// NewAggregateResolutionError builds the error for the given unresolved
// image types.
func NewAggregateResolutionError(imageTypes []string, causes map[string]error) *AggregateResolutionError {
	sorted := make([]string, len(imageTypes))
	copy(sorted, imageTypes)
	sort.Strings(sorted)
	return &AggregateResolutionError{ImageTypes: sorted, Causes: causes}
}

func (e *AggregateResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "could not resolve a version for image types [%s]: no active rampup plan selected a version and no active version exists",
		strings.Join(e.ImageTypes, ", "))
	for _, it := range e.ImageTypes {
		if cause, ok := e.Causes[it]; ok && errors.Is(cause, ErrPlanIntegrity) {
			fmt.Fprintf(&b, "; %v", cause)
		}
	}
	return b.String()
}

func (e *AggregateResolutionError) Unwrap() []error {
	errs := []error{ErrUnresolvedImageTypes}
	for _, it := range e.ImageTypes {
		if cause, ok := e.Causes[it]; ok {
			errs = append(errs, cause)
		}
	}
	return errs
}
