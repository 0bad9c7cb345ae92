package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/handlers"
)

func init() { Register(registerBookmarks, hostChecked, signedIn) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Get("/api/bookmarks", handlers.ListBookmarks(d))
	r.Post("/api/bookmarks", handlers.CreateBookmark(d))
	r.Get("/api/bookmarks/stats", handlers.BookmarkStats(d))
	r.Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
	r.Get("/api/dashboard/ws", handlers.Dashboard(d))
}
