// Package realtime carries per-owner bookmark change notifications to every
// open dashboard of that owner.
package realtime

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// Kind is the change type of a pushed notification.
type Kind string

const (
	Insert Kind = "insert"
	Delete Kind = "delete"
)

// Event is one pushed change. A delete only carries the bookmark id.
type Event struct {
	Kind     Kind            `json:"type"`
	Owner    string          `json:"user_id"`
	Bookmark domain.Bookmark `json:"bookmark"`
}

// ErrClosed is returned when subscribing to a hub that has been shut down.
var ErrClosed = errors.New("realtime: hub closed")

// Publisher emits change notifications.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscription is a scoped listener for one owner's changes. Events is
// closed once Close has returned.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Hub publishes events and hands out owner-scoped subscriptions.
type Hub interface {
	Publisher
	Subscribe(ctx context.Context, owner string) (Subscription, error)
}

// InsertEvent builds the notification for a freshly stored bookmark.
func InsertEvent(b domain.Bookmark) Event {
	return Event{Kind: Insert, Owner: b.Owner, Bookmark: b}
}

// DeleteEvent builds the notification for a removed bookmark.
func DeleteEvent(owner, id string) Event {
	return Event{Kind: Delete, Owner: owner, Bookmark: domain.Bookmark{ID: id, Owner: owner}}
}
