package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/aisearch"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

const (
	errAINotConfigured = "Gemini API key not configured"
	errAIFailed        = "AI search failed"
)

type aiSearchRequest struct {
	Query     string             `json:"query"`
	Bookmarks []domain.Candidate `json:"bookmarks"`
}

type aiSearchResponse struct {
	MatchedIDs []string `json:"matchedIds"`
}

// AISearch matches a query against the submitted bookmarks. The credential
// is checked before the body so a misconfigured server always says so.
func AISearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.AI.Configured() {
			writeError(w, http.StatusInternalServerError, errAINotConfigured)
			return
		}

		var req aiSearchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ids, err := d.AI.Search(r.Context(), req.Query, req.Bookmarks)
		switch {
		case errors.Is(err, aisearch.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, errAINotConfigured)
			return
		case err != nil:
			d.Logger.Error("ai search failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, errAIFailed)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, http.StatusOK, aiSearchResponse{MatchedIDs: ids})
	}
}
