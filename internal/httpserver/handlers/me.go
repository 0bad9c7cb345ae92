package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
)

type meResponse struct {
	domain.Identity
	Name string `json:"name"`
}

func Me(_ deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.IdentityFrom(r.Context())
		writeJSON(w, http.StatusOK, meResponse{Identity: id, Name: id.Name()})
	}
}
