package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
)

type rootResponse struct {
	Service  string            `json:"service"`
	Version  string            `json:"version,omitempty"`
	SignedIn bool              `json:"signed_in"`
	Name     string            `json:"name,omitempty"`
	Links    map[string]string `json:"links"`
}

// Root is where sign-in and sign-out land. It tells the client whether a
// session is active and where to go next.
func Root(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := rootResponse{Service: "smartmark", Version: d.Version}
		if id, ok := auth.IdentityFrom(r.Context()); ok {
			resp.SignedIn = true
			resp.Name = id.Name()
			resp.Links = map[string]string{
				"me":        "/api/me",
				"bookmarks": "/api/bookmarks",
				"dashboard": "/api/dashboard/ws",
				"signout":   "/auth/signout",
			}
		} else {
			resp.Links = map[string]string{"login": "/auth/login"}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
