package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/store"
)

type createBookmarkRequest struct {
	URL   string `json:"url" validate:"required,notblank,url,max=2048"`
	Title string `json:"title" validate:"required,notblank,max=500"`
}

type listBookmarksResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

// owner is set by mw.RequireIdentity; handlers below are only mounted behind it.
func owner(r *http.Request) string {
	id, _ := auth.IdentityFrom(r.Context())
	return id.ID
}

func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Store.ListByOwner(r.Context(), owner(r))
		if err != nil {
			d.Logger.Error("failed to list bookmarks", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load bookmarks")
			return
		}
		if list == nil {
			list = []domain.Bookmark{}
		}
		writeJSON(w, http.StatusOK, listBookmarksResponse{Bookmarks: list})
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if verrs := validateStruct(req); verrs != nil {
			writeJSON(w, http.StatusBadRequest, verrs)
			return
		}

		b, err := d.Store.Insert(r.Context(), owner(r), req.URL, req.Title)
		switch {
		case errors.Is(err, store.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			d.Logger.Error("failed to add bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to add bookmark")
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := d.Store.Delete(r.Context(), owner(r), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, store.ErrInvalidID):
			writeError(w, http.StatusBadRequest, "invalid bookmark id")
			return
		case err != nil:
			d.Logger.Error("failed to delete bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to delete bookmark")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// BookmarkStats serves the dashboard footer figures.
func BookmarkStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Store.ListByOwner(r.Context(), owner(r))
		if err != nil {
			d.Logger.Error("failed to list bookmarks", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load bookmarks")
			return
		}
		writeJSON(w, http.StatusOK, domain.ComputeStats(list, d.Now()))
	}
}
