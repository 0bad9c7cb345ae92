// Package reconcile merges local actions and pushed changes into the
// dashboard's ordered bookmark list.
package reconcile

import "github.com/MrSnakeDoc/smartmark/internal/domain"

// Kind tags the origin of a change applied to the list.
type Kind int

const (
	LocalInsert Kind = iota
	LocalDelete
	RemoteInsert
	RemoteDelete
	FullRefresh
)

func (k Kind) String() string {
	switch k {
	case LocalInsert:
		return "local-insert"
	case LocalDelete:
		return "local-delete"
	case RemoteInsert:
		return "remote-insert"
	case RemoteDelete:
		return "remote-delete"
	case FullRefresh:
		return "full-refresh"
	default:
		return "unknown"
	}
}

// Event is one change to apply. Inserts carry Bookmark, deletes carry ID,
// a full refresh carries Rows ordered newest-first.
type Event struct {
	Kind     Kind
	Bookmark domain.Bookmark
	ID       string
	Rows     []domain.Bookmark
}

// Apply returns the list after ev. The input slice is never modified.
//
// Inserts are deduplicated by id, so an optimistic local insert followed by
// the pushed notification for the same row leaves a single entry. Deletes
// of absent ids are no-ops.
func Apply(list []domain.Bookmark, ev Event) []domain.Bookmark {
	switch ev.Kind {
	case LocalInsert, RemoteInsert:
		if contains(list, ev.Bookmark.ID) {
			return list
		}
		out := make([]domain.Bookmark, 0, len(list)+1)
		out = append(out, ev.Bookmark)
		return append(out, list...)

	case LocalDelete, RemoteDelete:
		if !contains(list, ev.ID) {
			return list
		}
		out := make([]domain.Bookmark, 0, len(list)-1)
		for _, b := range list {
			if b.ID != ev.ID {
				out = append(out, b)
			}
		}
		return out

	case FullRefresh:
		out := make([]domain.Bookmark, len(ev.Rows))
		copy(out, ev.Rows)
		return out

	default:
		return list
	}
}

func contains(list []domain.Bookmark, id string) bool {
	for _, b := range list {
		if b.ID == id {
			return true
		}
	}
	return false
}
