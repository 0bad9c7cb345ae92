// Package store persists bookmarks, scoped per owner.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

var (
	// ErrInvalidID is returned for ids that cannot name a bookmark.
	ErrInvalidID = errors.New("invalid bookmark id")
	// ErrInvalidInput is returned when owner, url or title is blank.
	ErrInvalidInput = errors.New("owner, url and title are required")
)

// Store is the bookmark persistence contract.
//
// ListByOwner returns newest first. Delete only ever touches the caller's own
// rows, and deleting an id that does not exist is not an error.
type Store interface {
	Insert(ctx context.Context, owner, url, title string) (domain.Bookmark, error)
	Delete(ctx context.Context, owner, id string) error
	ListByOwner(ctx context.Context, owner string) ([]domain.Bookmark, error)
}

// ValidateInsert trims and checks the fields of a new bookmark.
func ValidateInsert(owner, url, title string) (string, string, string, error) {
	owner = strings.TrimSpace(owner)
	url = strings.TrimSpace(url)
	title = strings.TrimSpace(title)
	if owner == "" || url == "" || title == "" {
		return "", "", "", ErrInvalidInput
	}
	return owner, url, title, nil
}

// ParseID checks that id is a bookmark id and returns its canonical form.
func ParseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return u, nil
}
