package domain

import (
	"strings"
	"time"
)

// Bookmark is a saved URL/title pair belonging to exactly one owner.
//
// Bookmarks are never updated in place: they are created by their owner,
// and destroyed by an explicit delete from that same owner.
type Bookmark struct {
	// ID is the opaque unique identifier assigned by the store.
	ID string `json:"id"`

	// Owner is the identity the bookmark belongs to. Immutable after creation.
	Owner string `json:"user_id"`

	// URL is the saved address. Duplicates across bookmarks are allowed.
	URL string `json:"url"`

	// Title is the user-facing label.
	Title string `json:"title"`

	// CreatedAt is assigned by the store and drives newest-first ordering.
	CreatedAt time.Time `json:"created_at"`
}

// Candidate is the projection of a bookmark sent to the AI search.
type Candidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Candidate projects the bookmark for AI search.
func (b Bookmark) Candidate() Candidate {
	return Candidate{ID: b.ID, Title: b.Title, URL: b.URL}
}

// Candidates projects a list of bookmarks, preserving order.
func Candidates(list []Bookmark) []Candidate {
	out := make([]Candidate, 0, len(list))
	for _, b := range list {
		out = append(out, b.Candidate())
	}
	return out
}

// Identity is what a session exposes about the authenticated owner.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Name returns the best human label for the identity.
func (i Identity) Name() string {
	if n := strings.TrimSpace(i.DisplayName); n != "" {
		return n
	}
	if i.Email != "" {
		return i.Email
	}
	return "User"
}
