package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/handlers"
)

// The title and AI proxies call out on the server's behalf, so they are
// only open to signed-in owners.
func init() { Register(registerProxies, hostChecked, signedIn) }

func registerProxies(r chi.Router, d deps.Deps) {
	r.Get("/api/fetch-title", handlers.FetchTitle(d))
	r.Post("/api/ai-search", handlers.AISearch(d))
}
