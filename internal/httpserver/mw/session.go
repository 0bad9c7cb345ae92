package mw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// Identifier resolves a session id to the signed-in identity.
type Identifier interface {
	Identify(ctx context.Context, sessionID string) (domain.Identity, error)
}

// Session puts the identity behind the session cookie, if any, on the
// request context. It never rejects a request.
func Session(ids Identifier, cookieName string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if ids == nil || err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := ids.Identify(r.Context(), c.Value)
			if err != nil {
				if !errors.Is(err, auth.ErrNoSession) {
					log.Warn("failed to resolve session", logger.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireIdentity answers 401 unless Session found a signed-in identity.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFrom(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
