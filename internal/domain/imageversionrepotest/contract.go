// Package imageversionrepotest provides contract tests for
// [domain.ImageVersionRepository] implementations.
package imageversionrepotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// Factory creates a fresh [domain.ImageVersionRepository] for each test.
// The image types "spark", "hive" and "pig" must already exist.
type Factory func(t *testing.T) domain.ImageVersionRepository

// Run exercises the [domain.ImageVersionRepository] contract.
func Run(t *testing.T, factory Factory) {
	base := time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)

	version := func(imageType, v string, state domain.VersionState, at time.Time) domain.ImageVersion {
		return domain.ImageVersion{
			ImageType:  imageType,
			Version:    v,
			State:      state,
			CreatedBy:  "alice",
			CreatedAt:  at,
			ModifiedBy: "alice",
			ModifiedAt: at,
		}
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		id, err := repo.Create(ctx, version("spark", "3.2.0", domain.VersionStateNew, base))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if id == 0 {
			t.Error("Create returned zero id")
		}

		got, err := repo.Get(ctx, "spark", "3.2.0")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.State != domain.VersionStateNew {
			t.Errorf("State = %q, want %q", got.State, domain.VersionStateNew)
		}
		if got.ID != id {
			t.Errorf("ID = %d, want %d", got.ID, id)
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		v := version("spark", "3.2.0", domain.VersionStateNew, base)
		if _, err := repo.Create(ctx, v); err != nil {
			t.Fatalf("first Create: %v", err)
		}
		_, err := repo.Create(ctx, v)
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("second Create: got %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("CreateUnknownImageType", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Create(context.Background(), version("unknown", "1.0.0", domain.VersionStateNew, base))
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Create: got %v, want ErrNotFound", err)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "spark", "9.9.9")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("UpdateState", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		if _, err := repo.Create(ctx, version("spark", "3.2.0", domain.VersionStateNew, base)); err != nil {
			t.Fatal(err)
		}
		if err := repo.UpdateState(ctx, "spark", "3.2.0", domain.VersionStateActive, "bob"); err != nil {
			t.Fatalf("UpdateState: %v", err)
		}
		got, err := repo.Get(ctx, "spark", "3.2.0")
		if err != nil {
			t.Fatal(err)
		}
		if got.State != domain.VersionStateActive {
			t.Errorf("State = %q, want %q", got.State, domain.VersionStateActive)
		}
		if got.ModifiedBy != "bob" {
			t.Errorf("ModifiedBy = %q, want bob", got.ModifiedBy)
		}
	})

	t.Run("UpdateStateNotFound", func(t *testing.T) {
		repo := factory(t)
		err := repo.UpdateState(context.Background(), "spark", "0.0.1", domain.VersionStateActive, "bob")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("UpdateState: got %v, want ErrNotFound", err)
		}
	})

	t.Run("ListByImageType", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		for i, v := range []domain.ImageVersion{
			version("spark", "3.1.0", domain.VersionStateActive, base),
			version("spark", "3.2.0", domain.VersionStateNew, base.Add(time.Hour)),
			version("hive", "2.3.0", domain.VersionStateActive, base),
		} {
			if _, err := repo.Create(ctx, v); err != nil {
				t.Fatalf("Create %d: %v", i, err)
			}
		}
		got, err := repo.List(ctx, "spark")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("List: got %d, want 2", len(got))
		}
	})

	t.Run("LatestActiveVersions", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		for i, v := range []domain.ImageVersion{
			version("spark", "3.1.0", domain.VersionStateActive, base),
			version("spark", "3.2.0", domain.VersionStateActive, base.Add(2*time.Hour)),
			version("spark", "3.3.0", domain.VersionStateNew, base.Add(3*time.Hour)),
			version("spark", "3.0.0", domain.VersionStateActive, base.Add(time.Hour)),
			version("hive", "2.3.0", domain.VersionStateDeprecated, base),
			version("pig", "0.17.0", domain.VersionStateActive, base),
		} {
			if _, err := repo.Create(ctx, v); err != nil {
				t.Fatalf("Create %d: %v", i, err)
			}
		}

		got, err := repo.LatestActiveVersions(ctx, []string{"spark", "hive"})
		if err != nil {
			t.Fatalf("LatestActiveVersions: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("LatestActiveVersions: got %d, want 1 (hive has no active version, pig not requested)", len(got))
		}
		if got[0].ImageType != "spark" || got[0].Version != "3.2.0" {
			t.Errorf("got %s@%s, want spark@3.2.0", got[0].ImageType, got[0].Version)
		}
	})

	t.Run("LatestActiveVersionsTieBreak", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		for _, v := range []string{"1.0.0", "1.1.0"} {
			if _, err := repo.Create(ctx, version("pig", v, domain.VersionStateActive, base)); err != nil {
				t.Fatal(err)
			}
		}
		got, err := repo.LatestActiveVersions(ctx, []string{"pig"})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Version != "1.1.0" {
			t.Fatalf("got %+v, want the later-registered 1.1.0", got)
		}
	})

	t.Run("LatestActiveVersionsEmpty", func(t *testing.T) {
		repo := factory(t)
		got, err := repo.LatestActiveVersions(context.Background(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Fatalf("got %d versions, want 0", len(got))
		}
	})
}
