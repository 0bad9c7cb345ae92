package postgres

import (
	"strings"
	"testing"
)

func TestMigrationVersionsAreSorted(t *testing.T) {
	versions, err := migrationVersions()
	if err != nil {
		t.Fatalf("migrationVersions() error = %v", err)
	}
	if len(versions) < 2 {
		t.Fatalf("expected at least 2 migrations, got %v", versions)
	}
	for i := 1; i < len(versions); i++ {
		if versions[i-1] >= versions[i] {
			t.Errorf("migrations out of order: %s before %s", versions[i-1], versions[i])
		}
	}
}

func TestMigrationsCreateBookmarks(t *testing.T) {
	contents, err := migrationFiles.ReadFile("migrations/0001_bookmarks.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(contents)
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS bookmarks", "user_id TEXT NOT NULL", "created_at DESC"} {
		if !strings.Contains(sql, want) {
			t.Errorf("migration missing %q", want)
		}
	}
	// Duplicate urls are allowed.
	if strings.Contains(strings.ToUpper(sql), "UNIQUE") {
		t.Error("bookmarks must not carry a unique constraint")
	}
}
