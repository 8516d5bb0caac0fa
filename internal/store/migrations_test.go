package store

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"testing"
)

func testRawDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	u := url.URL{Scheme: "file", Path: path}
	db, err := sql.Open("sqlite", u.String())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrationsFreshDB(t *testing.T) {
	db := testRawDB(t)

	if err := runMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	version, err := currentVersion(context.Background(), db)
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if version != LatestVersion() {
		t.Fatalf("expected version %d, got %d", LatestVersion(), version)
	}

	for _, table := range []string{"authors", "blogs"} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count); err != nil {
			t.Fatalf("check %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("%s table not created", table)
		}
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := testRawDB(t)

	if err := runMigrations(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := runMigrations(db); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&rows); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if rows != len(migrations) {
		t.Fatalf("expected %d recorded migrations, got %d", len(migrations), rows)
	}
}

func TestMigrationPlan(t *testing.T) {
	db := testRawDB(t)

	plan, err := MigrationPlan(db)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.CurrentVersion != 0 {
		t.Fatalf("expected current 0, got %d", plan.CurrentVersion)
	}
	if plan.AvailableVersion != LatestVersion() {
		t.Fatalf("expected available %d, got %d", LatestVersion(), plan.AvailableVersion)
	}
	if len(plan.Pending) != len(migrations) {
		t.Fatalf("expected %d pending, got %d", len(migrations), len(plan.Pending))
	}

	if err := runMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	plan, err = MigrationPlan(db)
	if err != nil {
		t.Fatalf("plan after migrate: %v", err)
	}
	if len(plan.Pending) != 0 {
		t.Fatalf("expected nothing pending, got %+v", plan.Pending)
	}
}

func TestSchemaRejectsNegativeCounters(t *testing.T) {
	db := testRawDB(t)
	if err := runMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO authors (name, created_at, updated_at) VALUES ('Ada', 'x', 'x')`); err != nil {
		t.Fatalf("insert author: %v", err)
	}
	_, err := db.Exec(`INSERT INTO blogs (title, content, published_on, like_count, author_id, created_at, updated_at)
		VALUES ('Intro', 'Hello', '2024-01-01', -1, 1, 'x', 'x')`)
	if err == nil {
		t.Fatal("expected check constraint violation for negative like_count")
	}
}
