package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// testEpoch is the creation time stamped on seeded image types.
var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// OpenTestDB opens an in-memory image store with all migrations applied
// and registers the given image types, so version and plan rows can
// reference them. The database is closed when the test finishes.
func OpenTestDB(t *testing.T, imageTypes ...string) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := &ImageTypeRepo{DB: db}
	for _, name := range imageTypes {
		if err := repo.Create(context.Background(), domain.ImageType{Name: name, CreatedAt: testEpoch}); err != nil {
			t.Fatalf("seed image type %s: %v", name, err)
		}
	}
	return db
}

// TestClock returns a clock that advances one second per call, starting
// one second after start. Repositories order versions and plans by
// creation time, so tests need strictly increasing timestamps.
func TestClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}
