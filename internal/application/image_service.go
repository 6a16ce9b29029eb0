package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// RegisterVersionInput is the caller-provided input for registering an
// image version.
type RegisterVersionInput struct {
	ImageType  string
	Version    string
	ReleaseTag string
	// State defaults to [domain.VersionStateNew].
	State domain.VersionState
	User  string
}

// ImageService manages image types and their versions.
type ImageService struct {
	Types    domain.ImageTypeRepository
	Versions domain.ImageVersionRepository
	Now      func() time.Time
}

// RegisterType creates a new image type.
func (s *ImageService) RegisterType(ctx context.Context, t domain.ImageType) error {
	if t.Name == "" {
		return fmt.Errorf("%w: image type name is required", domain.ErrInvalidArgument)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	return s.Types.Create(ctx, t)
}

// GetType retrieves an image type by name.
func (s *ImageService) GetType(ctx context.Context, name string) (domain.ImageType, error) {
	return s.Types.Get(ctx, name)
}

// ListTypes returns all image types.
func (s *ImageService) ListTypes(ctx context.Context) ([]domain.ImageType, error) {
	return s.Types.List(ctx)
}

// RegisterVersion records a new version of an existing image type. The
// version must be a valid semantic version.
func (s *ImageService) RegisterVersion(ctx context.Context, in RegisterVersionInput) (domain.ImageVersion, error) {
	if in.ImageType == "" {
		return domain.ImageVersion{}, fmt.Errorf("%w: image type is required", domain.ErrInvalidArgument)
	}
	if _, err := semver.NewVersion(in.Version); err != nil {
		return domain.ImageVersion{}, fmt.Errorf("%w: version %q: %v", domain.ErrInvalidArgument, in.Version, err)
	}
	state := in.State
	if state == "" {
		state = domain.VersionStateNew
	}
	if !state.Valid() {
		return domain.ImageVersion{}, fmt.Errorf("%w: unknown version state %q", domain.ErrInvalidArgument, state)
	}
	if _, err := s.Types.Get(ctx, in.ImageType); err != nil {
		return domain.ImageVersion{}, err
	}

	now := s.now()
	v := domain.ImageVersion{
		ImageType:  in.ImageType,
		Version:    in.Version,
		State:      state,
		ReleaseTag: in.ReleaseTag,
		CreatedBy:  in.User,
		CreatedAt:  now,
		ModifiedBy: in.User,
		ModifiedAt: now,
	}
	id, err := s.Versions.Create(ctx, v)
	if err != nil {
		return domain.ImageVersion{}, err
	}
	v.ID = id
	return v, nil
}

// SetVersionState moves a version to a new lifecycle state.
func (s *ImageService) SetVersionState(ctx context.Context, imageType, version string, state domain.VersionState, user string) error {
	if !state.Valid() {
		return fmt.Errorf("%w: unknown version state %q", domain.ErrInvalidArgument, state)
	}
	return s.Versions.UpdateState(ctx, imageType, version, state, user)
}

// ListVersions returns every registered version of an image type.
func (s *ImageService) ListVersions(ctx context.Context, imageType string) ([]domain.ImageVersion, error) {
	return s.Versions.List(ctx, imageType)
}

func (s *ImageService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
