package domain

import "strings"

// MatchesQuery reports whether the bookmark's title or url contains query,
// ignoring case. A blank query matches everything.
func MatchesQuery(b Bookmark, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.URL), q)
}

// Filter returns the bookmarks matching query, in their original order.
// The input slice is never modified; a blank query returns it unchanged.
func Filter(list []Bookmark, query string) []Bookmark {
	if strings.TrimSpace(query) == "" {
		return list
	}
	out := make([]Bookmark, 0, len(list))
	for _, b := range list {
		if MatchesQuery(b, query) {
			out = append(out, b)
		}
	}
	return out
}

// FilterByIDs keeps the bookmarks whose id is in ids, in list order.
func FilterByIDs(list []Bookmark, ids []string) []Bookmark {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := make([]Bookmark, 0, len(ids))
	for _, b := range list {
		if _, ok := keep[b.ID]; ok {
			out = append(out, b)
		}
	}
	return out
}
