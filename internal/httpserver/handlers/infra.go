package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Count  *int   `json:"count,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of every collaborator.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		components := map[string]componentStatus{
			"redis":    checkRedis(ctx, d),
			"database": checkDatabase(ctx, d),
			"ai":       checkAI(d),
			"auth":     checkAuth(d),
		}
		if d.Sessions != nil {
			components["sessions"] = checkSessions(ctx, d)
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

// overallStatus is "critical" when bookmarks cannot be read or pushed,
// "degraded" when only optional features are off.
func overallStatus(components map[string]componentStatus) string {
	if !components["redis"].OK || !components["database"].OK {
		return "critical"
	}
	if !components["ai"].OK || !components["auth"].OK {
		return "degraded"
	}
	return "ok"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{OK: false, Impact: "sessions-and-live-sync-disabled", Error: "client not initialized"}
	}
	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{OK: false, Impact: "sessions-and-live-sync-disabled", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: "pubsub"}
}

func checkDatabase(ctx context.Context, d deps.Deps) componentStatus {
	if d.Database == nil {
		return componentStatus{OK: true, Mode: d.StoreKind, Impact: "bookmarks-lost-on-restart"}
	}
	if err := d.Database.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: d.StoreKind, Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: d.StoreKind}
}

func checkAI(d deps.Deps) componentStatus {
	if !d.AI.Configured() {
		return componentStatus{OK: false, Impact: "ai-search-disabled", Error: "api key not configured"}
	}
	return componentStatus{OK: true, Mode: "gemini"}
}

func checkAuth(d deps.Deps) componentStatus {
	if d.Auth == nil {
		return componentStatus{OK: false, Impact: "sign-in-disabled"}
	}
	return componentStatus{OK: true, Mode: d.AuthMode}
}

func checkSessions(ctx context.Context, d deps.Deps) componentStatus {
	n, err := d.Sessions.Count(ctx)
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true, Count: &n}
}
