package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Stats summarises an owner's collection for the dashboard header.
type Stats struct {
	Count       int        `json:"count"`
	Domains     int        `json:"domains"`
	LastAddedAt *time.Time `json:"last_added_at,omitempty"`
	LastAdded   string     `json:"last_added"`
}

// Hostname returns the display domain of a bookmark url ("www." stripped).
// Unparseable urls are returned as-is.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// ComputeStats expects list ordered newest-first, as the store returns it.
func ComputeStats(list []Bookmark, now time.Time) Stats {
	st := Stats{Count: len(list), LastAdded: "—"}
	if len(list) == 0 {
		return st
	}

	domains := make(map[string]struct{}, len(list))
	for _, b := range list {
		domains[Hostname(b.URL)] = struct{}{}
	}
	st.Domains = len(domains)

	last := list[0].CreatedAt
	st.LastAddedAt = &last
	st.LastAdded = RelativeTime(last, now)
	return st
}

// RelativeTime renders t relative to now: "just now", "5m ago", "3h ago",
// "2d ago", then a plain date after a week.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	default:
		return t.Format("2006-01-02")
	}
}
