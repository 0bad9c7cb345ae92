package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
)

type titleResponse struct {
	Title string `json:"title"`
}

// FetchTitle proxies a title lookup. Only a missing or empty url is a 400;
// every other failure, blank urls included, is an empty title with status 200.
func FetchTitle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		if target == "" {
			writeJSON(w, http.StatusBadRequest, titleResponse{Title: ""})
			return
		}
		writeJSON(w, http.StatusOK, titleResponse{Title: d.Titles.Fetch(r.Context(), strings.TrimSpace(target))})
	}
}
