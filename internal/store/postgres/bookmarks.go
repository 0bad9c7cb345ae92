package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/store"
)

// Store implements store.Store on the bookmarks table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, owner, url, title string) (domain.Bookmark, error) {
	owner, url, title, err := store.ValidateInsert(owner, url, title)
	if err != nil {
		return domain.Bookmark{}, err
	}

	b := domain.Bookmark{Owner: owner, URL: url, Title: title}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO bookmarks (user_id, url, title)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at
	`, owner, url, title).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to insert bookmark: %w", err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

func (s *Store) Delete(ctx context.Context, owner, id string) error {
	u, err := store.ParseID(id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = $1 AND user_id = $2`, u.String(), owner); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}

func (s *Store) ListByOwner(ctx context.Context, owner string) ([]domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, user_id, url, title, created_at
		FROM bookmarks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.Bookmark, 0)
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(&b.ID, &b.Owner, &b.URL, &b.Title, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		b.CreatedAt = b.CreatedAt.UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}
	return out, nil
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
