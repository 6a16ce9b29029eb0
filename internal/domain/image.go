package domain

import "time"

// ImageType is a named category of workload container image, such as a
// job runtime flavor.
type ImageType struct {
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

// VersionState is the lifecycle state of an [ImageVersion].
type VersionState string

const (
	VersionStateNew        VersionState = "new"
	VersionStateActive     VersionState = "active"
	VersionStateUnstable   VersionState = "unstable"
	VersionStateDeprecated VersionState = "deprecated"
)

// Valid reports whether s is a known version state.
func (s VersionState) Valid() bool {
	switch s {
	case VersionStateNew, VersionStateActive, VersionStateUnstable, VersionStateDeprecated:
		return true
	}
	return false
}

// ImageVersion is one registered version of an image type. Versions are
// never deleted; they move between states. Several versions of one type
// may be active at the same time, in which case the most recently created
// one is the "latest active" version.
type ImageVersion struct {
	ID         int64
	ImageType  string
	Version    string
	State      VersionState
	ReleaseTag string
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}
