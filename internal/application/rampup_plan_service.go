package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// CreatePlanInput is the caller-provided input for creating a rampup plan.
type CreatePlanInput struct {
	ImageType   string
	Name        string
	Description string
	Entries     []domain.RampupEntry
	User        string
}

// UpdatePlanInput replaces the entries of the active plan of an image type.
type UpdatePlanInput struct {
	ImageType string
	Entries   []domain.RampupEntry
	User      string
}

// RampupPlanService authors rampup plans. Every write is validated before
// it reaches the store.
type RampupPlanService struct {
	Types    domain.ImageTypeRepository
	Versions domain.ImageVersionRepository
	Plans    domain.RampupPlanRepository
	Now      func() time.Time
}

// Create validates and stores a new active plan. Any plan previously
// active for the image type is deactivated.
func (s *RampupPlanService) Create(ctx context.Context, in CreatePlanInput) (domain.RampupPlan, error) {
	if in.ImageType == "" {
		return domain.RampupPlan{}, fmt.Errorf("%w: image type is required", domain.ErrInvalidArgument)
	}
	if in.Name == "" {
		return domain.RampupPlan{}, fmt.Errorf("%w: plan name is required", domain.ErrInvalidArgument)
	}

	entries := make([]domain.RampupEntry, len(in.Entries))
	for i, e := range in.Entries {
		e.CreatedBy = in.User
		e.ModifiedBy = in.User
		entries[i] = e
	}
	if err := domain.ValidatePlan(entries); err != nil {
		return domain.RampupPlan{}, err
	}
	if _, err := s.Types.Get(ctx, in.ImageType); err != nil {
		return domain.RampupPlan{}, err
	}
	if err := s.checkVersionsRegistered(ctx, in.ImageType, entries); err != nil {
		return domain.RampupPlan{}, err
	}

	now := s.now()
	plan := domain.RampupPlan{
		ImageType:   in.ImageType,
		Name:        in.Name,
		Description: in.Description,
		Active:      true,
		Entries:     entries,
		CreatedBy:   in.User,
		ModifiedBy:  in.User,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	id, err := s.Plans.Create(ctx, plan)
	if err != nil {
		return domain.RampupPlan{}, err
	}
	plan.ID = id
	return plan, nil
}

// Update replaces the entries of the active plan. Entries whose version
// was already part of the plan keep their original author.
func (s *RampupPlanService) Update(ctx context.Context, in UpdatePlanInput) (domain.RampupPlan, error) {
	current, err := s.Plans.GetActive(ctx, in.ImageType)
	if err != nil {
		return domain.RampupPlan{}, err
	}
	authors := make(map[string]string, len(current.Entries))
	for _, e := range current.Entries {
		authors[e.Version] = e.CreatedBy
	}

	entries := make([]domain.RampupEntry, len(in.Entries))
	for i, e := range in.Entries {
		e.CreatedBy = in.User
		if author, ok := authors[e.Version]; ok {
			e.CreatedBy = author
		}
		e.ModifiedBy = in.User
		entries[i] = e
	}
	if err := domain.ValidatePlan(entries); err != nil {
		return domain.RampupPlan{}, err
	}
	if err := s.checkVersionsRegistered(ctx, in.ImageType, entries); err != nil {
		return domain.RampupPlan{}, err
	}

	if err := s.Plans.UpdateActive(ctx, in.ImageType, entries, in.User); err != nil {
		return domain.RampupPlan{}, err
	}
	return s.Plans.GetActive(ctx, in.ImageType)
}

// GetActive returns the active plan of an image type.
func (s *RampupPlanService) GetActive(ctx context.Context, imageType string) (domain.RampupPlan, error) {
	return s.Plans.GetActive(ctx, imageType)
}

func (s *RampupPlanService) checkVersionsRegistered(ctx context.Context, imageType string, entries []domain.RampupEntry) error {
	for _, e := range entries {
		if _, err := s.Versions.Get(ctx, imageType, e.Version); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: version %s of %q is not registered", domain.ErrInvalidArgument, e.Version, imageType)
			}
			return err
		}
	}
	return nil
}

func (s *RampupPlanService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
