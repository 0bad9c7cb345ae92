package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/handlers"
)

func init() {
	Register(registerHealth)
	Register(registerInternal, internalOnly)
}

func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Root(d))
	r.Get("/healthz", handlers.Healthz(d))
}

func registerInternal(r chi.Router, d deps.Deps) {
	r.Get("/readyz", handlers.Readyz(d))
	r.Get("/infra", handlers.Infra(d))
}
