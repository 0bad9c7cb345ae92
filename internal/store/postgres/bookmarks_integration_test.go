package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrSnakeDoc/smartmark/internal/store"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	databaseURL := os.Getenv("SMARTMARK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("SMARTMARK_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, databaseURL)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	s := New(db)
	ctx := context.Background()
	owner := "it-" + uuid.NewString()
	t.Cleanup(func() { _, _ = db.ExecContext(ctx, `DELETE FROM bookmarks WHERE user_id = $1`, owner) })

	first, err := s.Insert(ctx, owner, "https://go.dev", "Go")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	second, err := s.Insert(ctx, owner, "https://go.dev", "Go, again")
	if err != nil {
		t.Fatalf("Insert() duplicate url error = %v", err)
	}

	list, err := s.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("ListByOwner() = %+v, want newest first", list)
	}

	if err := s.Delete(ctx, "someone-else", first.ID); err != nil {
		t.Fatalf("Delete() other owner error = %v", err)
	}
	if err := s.Delete(ctx, owner, first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, owner, first.ID); err != nil {
		t.Fatalf("Delete() absent id error = %v", err)
	}
	if err := s.Delete(ctx, owner, "nope"); !errors.Is(err, store.ErrInvalidID) {
		t.Fatalf("Delete() error = %v, want ErrInvalidID", err)
	}

	list, err = s.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != second.ID {
		t.Fatalf("ListByOwner() after delete = %+v", list)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	applied, err := Migrate(context.Background(), db)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("second Migrate() applied %v", applied)
	}
}

func TestBookmarksRejectUpdate(t *testing.T) {
	db := openTestDB(t)
	s := New(db)
	ctx := context.Background()
	owner := "it-" + uuid.NewString()
	t.Cleanup(func() { _, _ = db.ExecContext(ctx, `DELETE FROM bookmarks WHERE user_id = $1`, owner) })

	b, err := s.Insert(ctx, owner, "https://go.dev", "Go")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	_, err = db.ExecContext(ctx, `UPDATE bookmarks SET title = 'changed' WHERE id = $1`, b.ID)
	if err == nil {
		t.Fatal("expected UPDATE to be rejected")
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected PostgreSQL error, got: %v", err)
	}
	if pgErr.SQLState() != "55000" {
		t.Errorf("SQLSTATE = %s, want 55000", pgErr.SQLState())
	}
}
