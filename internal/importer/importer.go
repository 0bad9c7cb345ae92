package importer

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/store"
)

// Result counts what an import did.
type Result struct {
	Imported int
	Skipped  int
}

// Import inserts entries for owner. URLs the owner already saved are
// skipped, so running the same file twice is harmless. Entries are inserted
// last to first so the newest-first list shows them in file order.
func Import(ctx context.Context, st store.Store, owner string, entries []Entry, log logger.Logger) (Result, error) {
	existing, err := st.ListByOwner(ctx, owner)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	seen := make(map[string]struct{}, len(existing)+len(entries))
	for _, b := range existing {
		seen[b.URL] = struct{}{}
	}

	keep := make([]Entry, 0, len(entries))
	var res Result
	for _, e := range entries {
		if _, dup := seen[e.URL]; dup {
			res.Skipped++
			continue
		}
		seen[e.URL] = struct{}{}
		keep = append(keep, e)
	}

	for i := len(keep) - 1; i >= 0; i-- {
		e := keep[i]
		if _, err := st.Insert(ctx, owner, e.URL, e.Title); err != nil {
			return res, fmt.Errorf("failed to import %q: %w", e.URL, err)
		}
		res.Imported++
		log.Debug("imported bookmark", logger.String("url", e.URL))
	}
	return res, nil
}
