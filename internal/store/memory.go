package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// Memory keeps bookmarks in process. Used when no database is configured
// and in tests.
type Memory struct {
	mu      sync.RWMutex
	byOwner map[string][]domain.Bookmark // owner -> bookmarks, newest first
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		byOwner: make(map[string][]domain.Bookmark),
		now:     time.Now,
	}
}

func (m *Memory) Insert(ctx context.Context, owner, url, title string) (domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bookmark{}, err
	}
	owner, url, title, err := ValidateInsert(owner, url, title)
	if err != nil {
		return domain.Bookmark{}, err
	}

	b := domain.Bookmark{
		ID:        uuid.NewString(),
		Owner:     owner,
		URL:       url,
		Title:     title,
		CreatedAt: m.now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.byOwner[owner]
	next := make([]domain.Bookmark, 0, len(list)+1)
	next = append(next, b)
	m.byOwner[owner] = append(next, list...)
	return b, nil
}

func (m *Memory) Delete(ctx context.Context, owner, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u, err := ParseID(id)
	if err != nil {
		return err
	}
	id = u.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.byOwner[owner]
	for i, b := range list {
		if b.ID != id {
			continue
		}
		next := make([]domain.Bookmark, 0, len(list)-1)
		next = append(next, list[:i]...)
		m.byOwner[owner] = append(next, list[i+1:]...)
		return nil
	}
	return nil
}

func (m *Memory) ListByOwner(ctx context.Context, owner string) ([]domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.byOwner[owner]
	out := make([]domain.Bookmark, len(list))
	copy(out, list)
	return out, nil
}

// Count returns the number of bookmarks across all owners.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, list := range m.byOwner {
		n += len(list)
	}
	return n
}
