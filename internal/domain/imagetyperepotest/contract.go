// Package imagetyperepotest provides contract tests for
// [domain.ImageTypeRepository] implementations.
package imagetyperepotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// Factory creates a fresh [domain.ImageTypeRepository] for each test invocation.
type Factory func(t *testing.T) domain.ImageTypeRepository

// Run exercises the [domain.ImageTypeRepository] contract.
func Run(t *testing.T, factory Factory) {
	now := time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		it := domain.ImageType{
			Name:        "spark",
			Description: "Spark job runtime",
			CreatedBy:   "alice",
			CreatedAt:   now,
		}

		if err := repo.Create(ctx, it); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := repo.Get(ctx, "spark")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Description != "Spark job runtime" {
			t.Errorf("Description = %q, want %q", got.Description, "Spark job runtime")
		}
		if got.CreatedBy != "alice" {
			t.Errorf("CreatedBy = %q, want %q", got.CreatedBy, "alice")
		}
		if !got.CreatedAt.Equal(now) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		it := domain.ImageType{Name: "spark", CreatedAt: now}

		if err := repo.Create(ctx, it); err != nil {
			t.Fatalf("first Create: %v", err)
		}
		err := repo.Create(ctx, it)
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("second Create: got %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		for _, name := range []string{"spark", "hive"} {
			if err := repo.Create(ctx, domain.ImageType{Name: name, CreatedAt: now}); err != nil {
				t.Fatalf("Create %s: %v", name, err)
			}
		}

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("List: got %d, want 2", len(got))
		}
		if got[0].Name != "hive" || got[1].Name != "spark" {
			t.Errorf("List order: got [%s, %s], want [hive, spark]", got[0].Name, got[1].Name)
		}
	})
}
