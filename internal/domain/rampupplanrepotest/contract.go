// Package rampupplanrepotest provides contract tests for
// [domain.RampupPlanRepository] implementations.
package rampupplanrepotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// Factory creates a fresh [domain.RampupPlanRepository] for each test
// invocation. The image types "spark" and "hive" must already exist.
type Factory func(t *testing.T) domain.RampupPlanRepository

// Run exercises the [domain.RampupPlanRepository] contract.
func Run(t *testing.T, factory Factory) {
	now := time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)

	plan := func(imageType, name string, entries ...domain.RampupEntry) domain.RampupPlan {
		return domain.RampupPlan{
			ImageType:  imageType,
			Name:       name,
			Active:     true,
			Entries:    entries,
			CreatedBy:  "alice",
			ModifiedBy: "alice",
			CreatedAt:  now,
			ModifiedAt: now,
		}
	}
	entry := func(version string, pct int, tag domain.StabilityTag) domain.RampupEntry {
		return domain.RampupEntry{Version: version, Percentage: pct, StabilityTag: tag, CreatedBy: "alice", ModifiedBy: "alice"}
	}

	t.Run("CreateAndGetActive", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		id, err := repo.Create(ctx, plan("spark", "spark-q1",
			entry("3.1.0", 90, domain.StabilityStable),
			entry("3.2.0", 10, domain.StabilityExperimental),
		))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := repo.GetActive(ctx, "spark")
		if err != nil {
			t.Fatalf("GetActive: %v", err)
		}
		if got.ID != id {
			t.Errorf("ID = %d, want %d", got.ID, id)
		}
		if got.Name != "spark-q1" {
			t.Errorf("Name = %q, want %q", got.Name, "spark-q1")
		}
		if !got.Active {
			t.Error("Active = false, want true")
		}
		if len(got.Entries) != 2 {
			t.Fatalf("Entries: got %d, want 2", len(got.Entries))
		}
		if got.Entries[0].Version != "3.1.0" || got.Entries[0].Percentage != 90 {
			t.Errorf("Entries[0] = %+v, want 3.1.0/90", got.Entries[0])
		}
		if got.Entries[1].StabilityTag != domain.StabilityExperimental {
			t.Errorf("Entries[1].StabilityTag = %q, want experimental", got.Entries[1].StabilityTag)
		}
	})

	t.Run("GetActiveNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.GetActive(context.Background(), "spark")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("GetActive: got %v, want ErrNotFound", err)
		}
	})

	t.Run("CreateDeactivatesPrevious", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if _, err := repo.Create(ctx, plan("spark", "first", entry("3.1.0", 100, domain.StabilityStable))); err != nil {
			t.Fatalf("first Create: %v", err)
		}
		second, err := repo.Create(ctx, plan("spark", "second", entry("3.2.0", 100, domain.StabilityStable)))
		if err != nil {
			t.Fatalf("second Create: %v", err)
		}

		got, err := repo.GetActive(ctx, "spark")
		if err != nil {
			t.Fatalf("GetActive: %v", err)
		}
		if got.ID != second || got.Name != "second" {
			t.Errorf("active plan = %d/%q, want %d/second", got.ID, got.Name, second)
		}

		plans, err := repo.FetchActivePlans(ctx, []string{"spark"})
		if err != nil {
			t.Fatalf("FetchActivePlans: %v", err)
		}
		if len(plans) != 1 || plans["spark"].ID != second {
			t.Errorf("FetchActivePlans = %+v, want only plan %d", plans, second)
		}
	})

	t.Run("UpdateActive", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		id, err := repo.Create(ctx, plan("spark", "spark-q1", entry("3.1.0", 100, domain.StabilityStable)))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		err = repo.UpdateActive(ctx, "spark", []domain.RampupEntry{
			entry("3.1.0", 50, domain.StabilityStable),
			entry("3.2.0", 50, domain.StabilityStable),
		}, "bob")
		if err != nil {
			t.Fatalf("UpdateActive: %v", err)
		}

		got, err := repo.GetActive(ctx, "spark")
		if err != nil {
			t.Fatalf("GetActive: %v", err)
		}
		if got.ID != id {
			t.Errorf("ID = %d, want %d", got.ID, id)
		}
		if got.ModifiedBy != "bob" {
			t.Errorf("ModifiedBy = %q, want bob", got.ModifiedBy)
		}
		if len(got.Entries) != 2 || got.Entries[1].Version != "3.2.0" {
			t.Errorf("Entries = %+v, want 3.1.0/50, 3.2.0/50", got.Entries)
		}
	})

	t.Run("UpdateActiveNotFound", func(t *testing.T) {
		repo := factory(t)
		err := repo.UpdateActive(context.Background(), "hive", []domain.RampupEntry{entry("2.3.0", 100, domain.StabilityStable)}, "bob")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("UpdateActive: got %v, want ErrNotFound", err)
		}
	})

	t.Run("FetchActivePlans", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if _, err := repo.Create(ctx, plan("spark", "s", entry("3.1.0", 100, domain.StabilityStable))); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.Create(ctx, plan("hive", "h",
			entry("2.3.0", 80, domain.StabilityStable),
			entry("2.4.0", 20, domain.StabilityStable),
		)); err != nil {
			t.Fatal(err)
		}

		got, err := repo.FetchActivePlans(ctx, []string{"spark", "hive", "pig"})
		if err != nil {
			t.Fatalf("FetchActivePlans: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("FetchActivePlans: got %d plans, want 2", len(got))
		}
		if _, ok := got["pig"]; ok {
			t.Error("pig has no plan but is present")
		}
		if len(got["hive"].Entries) != 2 {
			t.Errorf("hive entries: got %d, want 2", len(got["hive"].Entries))
		}
		if got["spark"].ImageType != "spark" {
			t.Errorf("spark plan ImageType = %q", got["spark"].ImageType)
		}
	})

	t.Run("FetchActivePlansEmpty", func(t *testing.T) {
		repo := factory(t)
		got, err := repo.FetchActivePlans(context.Background(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Fatalf("got %d plans, want 0", len(got))
		}
	})
}
