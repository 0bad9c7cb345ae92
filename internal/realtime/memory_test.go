package realtime

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

func TestMemoryHubDeliversToOwnerOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewMemoryHub()
	ctx := context.Background()

	alice, err := hub.Subscribe(ctx, "alice")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer alice.Close()

	bob, err := hub.Subscribe(ctx, "bob")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer bob.Close()

	b := domain.Bookmark{ID: "1", Owner: "alice", URL: "https://go.dev", Title: "Go"}
	if err := hub.Publish(ctx, InsertEvent(b)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case ev := <-alice.Events():
		if ev.Kind != Insert || ev.Bookmark.ID != "1" {
			t.Errorf("got %+v, want insert of 1", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("alice did not receive the event")
	}

	select {
	case ev := <-bob.Events():
		t.Errorf("bob received %+v", ev)
	default:
	}
}

func TestMemoryHubCloseReleasesSubscription(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewMemoryHub()
	sub, err := hub.Subscribe(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if got := hub.Subscribers("alice"); got != 1 {
		t.Fatalf("Subscribers() = %d, want 1", got)
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if got := hub.Subscribers("alice"); got != 0 {
		t.Errorf("Subscribers() = %d after Close, want 0", got)
	}
	if _, ok := <-sub.Events(); ok {
		t.Error("Events() still open after Close")
	}

	// Publishing with no listeners is fine.
	if err := hub.Publish(context.Background(), DeleteEvent("alice", "1")); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}

func TestMemoryHubDropsWhenFull(t *testing.T) {
	hub := NewMemoryHub()
	sub, err := hub.Subscribe(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	for i := 0; i < subscriptionBuffer+10; i++ {
		if err := hub.Publish(context.Background(), DeleteEvent("alice", "x")); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	if got := len(sub.Events()); got != subscriptionBuffer {
		t.Errorf("buffered events = %d, want %d", got, subscriptionBuffer)
	}
}

func TestMemoryHubClosed(t *testing.T) {
	hub := NewMemoryHub()
	sub, err := hub.Subscribe(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := hub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, ok := <-sub.Events(); ok {
		t.Error("subscription still open after hub Close")
	}
	if err := sub.Close(); err != nil {
		t.Errorf("subscription Close() after hub Close error = %v", err)
	}
	if _, err := hub.Subscribe(context.Background(), "alice"); err != ErrClosed {
		t.Errorf("Subscribe() error = %v, want ErrClosed", err)
	}
	if err := hub.Publish(context.Background(), DeleteEvent("alice", "1")); err != ErrClosed {
		t.Errorf("Publish() error = %v, want ErrClosed", err)
	}
}

func TestMemoryHubSubscribeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewMemoryHub().Subscribe(ctx, "alice"); err == nil {
		t.Error("Subscribe() with canceled context should fail")
	}
}
