package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func newTestMemory() *Memory {
	m := NewMemory()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return m
}

func TestMemoryInsertAndList(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	first, err := m.Insert(ctx, "alice", "https://go.dev", "Go")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	second, err := m.Insert(ctx, "alice", " https://pkg.go.dev ", " Packages ")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := m.Insert(ctx, "bob", "https://example.com", "Example"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if _, err := uuid.Parse(first.ID); err != nil {
		t.Errorf("Insert() id %q is not a uuid", first.ID)
	}
	if second.URL != "https://pkg.go.dev" || second.Title != "Packages" {
		t.Errorf("Insert() did not trim fields: %+v", second)
	}

	list, err := m.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	got := []string{list[0].ID, list[1].ID}
	if diff := cmp.Diff([]string{second.ID, first.ID}, got); diff != "" {
		t.Errorf("ListByOwner() order mismatch (-want +got):\n%s", diff)
	}
	if !list[0].CreatedAt.After(list[1].CreatedAt) {
		t.Error("ListByOwner() is not newest first")
	}
	if m.Count() != 3 {
		t.Errorf("Count() = %d, want 3", m.Count())
	}
}

func TestMemoryAllowsDuplicateURLs(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	a, _ := m.Insert(ctx, "alice", "https://go.dev", "Go")
	b, _ := m.Insert(ctx, "alice", "https://go.dev", "Go again")

	if a.ID == b.ID {
		t.Fatal("duplicate url reused an id")
	}
	list, _ := m.ListByOwner(ctx, "alice")
	if len(list) != 2 {
		t.Errorf("ListByOwner() = %d rows, want 2", len(list))
	}
}

func TestMemoryInsertValidation(t *testing.T) {
	m := newTestMemory()
	tests := []struct {
		name              string
		owner, url, title string
	}{
		{"blank owner", "", "https://go.dev", "Go"},
		{"blank url", "alice", "  ", "Go"},
		{"blank title", "alice", "https://go.dev", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Insert(context.Background(), tt.owner, tt.url, tt.title)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Insert() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestMemoryDelete(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	keep, _ := m.Insert(ctx, "alice", "https://go.dev", "Go")
	drop, _ := m.Insert(ctx, "alice", "https://example.com", "Example")

	if err := m.Delete(ctx, "alice", drop.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// Deleting again is not an error.
	if err := m.Delete(ctx, "alice", drop.ID); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}

	list, _ := m.ListByOwner(ctx, "alice")
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Errorf("ListByOwner() after delete = %+v", list)
	}
}

func TestMemoryDeleteIsOwnerScoped(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	b, _ := m.Insert(ctx, "alice", "https://go.dev", "Go")

	if err := m.Delete(ctx, "mallory", b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	list, _ := m.ListByOwner(ctx, "alice")
	if len(list) != 1 {
		t.Error("another owner deleted alice's bookmark")
	}
}

func TestMemoryDeleteInvalidID(t *testing.T) {
	m := newTestMemory()
	if err := m.Delete(context.Background(), "alice", "not-a-uuid"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Delete() error = %v, want ErrInvalidID", err)
	}
}

func TestMemoryListReturnsCopy(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	_, _ = m.Insert(ctx, "alice", "https://go.dev", "Go")

	list, _ := m.ListByOwner(ctx, "alice")
	list[0].Title = "changed"

	again, _ := m.ListByOwner(ctx, "alice")
	if again[0].Title != "Go" {
		t.Error("ListByOwner() exposed internal state")
	}
}

func TestMemoryCanceledContext(t *testing.T) {
	m := newTestMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Insert(ctx, "alice", "https://go.dev", "Go"); !errors.Is(err, context.Canceled) {
		t.Errorf("Insert() error = %v, want context.Canceled", err)
	}
	if _, err := m.ListByOwner(ctx, "alice"); !errors.Is(err, context.Canceled) {
		t.Errorf("ListByOwner() error = %v, want context.Canceled", err)
	}
}
