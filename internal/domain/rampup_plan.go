package domain

import "time"

// PlanID identifies a stored rampup plan.
type PlanID int64

// StabilityTag marks how trusted a version in a rampup plan is.
type StabilityTag string

const (
	StabilityStable       StabilityTag = "stable"
	StabilityUnstable     StabilityTag = "unstable"
	StabilityExperimental StabilityTag = "experimental"
)

// RampupEntry is one weighted version of a [RampupPlan].
type RampupEntry struct {
	Version      string
	Percentage   int
	StabilityTag StabilityTag
	CreatedBy    string
	ModifiedBy   string
}

// RampupPlan is the percentage-weighted set of versions eligible for
// selection for one image type. Entries are written together with their
// plan and never on their own.
type RampupPlan struct {
	ID          PlanID
	ImageType   string
	Name        string
	Description string
	Active      bool
	Entries     []RampupEntry
	CreatedBy   string
	ModifiedBy  string
	CreatedAt   time.Time
	ModifiedAt  time.Time
}
