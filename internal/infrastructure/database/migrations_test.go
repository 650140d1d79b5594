package database

import (
	"context"
	"testing"
	"testing/fstest"
)

var testMigrations = fstest.MapFS{
	"20260101_000000_create_frames.up.sql": {Data: []byte(`
		CREATE TABLE frames (id INTEGER PRIMARY KEY, frame TEXT NOT NULL)`)},
	"20260101_000000_create_frames.down.sql": {Data: []byte(`DROP TABLE frames`)},
	"20260102_000000_add_index.up.sql": {Data: []byte(`
		CREATE INDEX idx_frames_frame ON frames(frame)`)},
	"20260102_000000_add_index.down.sql": {Data: []byte(`DROP INDEX idx_frames_frame`)},
	"README.md":                          {Data: []byte("not a migration")},
	"bogus.up.sql":                       {Data: []byte("SELECT 1")},
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return n == 1
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations(testMigrations)
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("LoadMigrations() returned %d migrations, want 2", len(migrations))
	}
	if migrations[0].Version != "20260101_000000" || migrations[0].Name != "create_frames" {
		t.Errorf("first migration = %+v", migrations[0])
	}
	if migrations[1].DownSQL == "" {
		t.Error("second migration is missing its down SQL")
	}

	none, err := LoadMigrations(nil)
	if err != nil || none != nil {
		t.Errorf("LoadMigrations(nil) = %v, %v", none, err)
	}
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := db.Migrate(ctx, testMigrations); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "frames") {
		t.Fatal("table frames not created")
	}

	applied, err := db.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("expected 2 applied migrations, got %d", len(applied))
	}
	for _, r := range applied {
		if r.AppliedAt.IsZero() {
			t.Errorf("migration %s has zero AppliedAt", r.Version)
		}
	}

	// Idempotent
	if err := db.Migrate(ctx, testMigrations); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	pending, err := db.Pending(ctx, testMigrations)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected 0 pending migrations, got %d", len(pending))
	}
}

func TestMigrate_FailureStops(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	broken := fstest.MapFS{
		"20260101_000000_ok.up.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER)")},
		"20260102_000000_broken.up.sql": {Data: []byte("CREATE TABLE nope (")},
		"20260103_000000_later.up.sql":  {Data: []byte("CREATE TABLE later (id INTEGER)")},
	}

	if err := db.Migrate(ctx, broken); err == nil {
		t.Fatal("Migrate() expected error for broken SQL")
	}
	if !tableExists(t, db, "ok") {
		t.Error("migration before the failure should stay applied")
	}
	if tableExists(t, db, "later") {
		t.Error("migration after the failure should not run")
	}
}

func TestRollback(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := db.Migrate(ctx, testMigrations); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.Rollback(ctx, testMigrations); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	applied, err := db.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied() error = %v", err)
	}
	if len(applied) != 1 || applied[0].Version != "20260101_000000" {
		t.Errorf("applied after rollback = %+v", applied)
	}
	if !tableExists(t, db, "frames") {
		t.Error("rolling back the index must not drop the table")
	}

	if err := db.Rollback(ctx, testMigrations); err != nil {
		t.Fatalf("second Rollback() error = %v", err)
	}
	if tableExists(t, db, "frames") {
		t.Error("table frames should be dropped")
	}

	// Nothing left to roll back
	if err := db.Rollback(ctx, testMigrations); err != nil {
		t.Errorf("Rollback() with nothing applied error = %v", err)
	}
}
