package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/handlers"
)

func init() {
	Register(registerAuth, hostChecked)
	Register(registerMe, hostChecked, signedIn)
}

func registerAuth(r chi.Router, d deps.Deps) {
	r.Get("/auth/login", handlers.Login(d))
	r.Get("/auth/callback", handlers.Callback(d))
	r.Post("/auth/signout", handlers.SignOut(d))
}

func registerMe(r chi.Router, d deps.Deps) {
	r.Get("/api/me", handlers.Me(d))
}
