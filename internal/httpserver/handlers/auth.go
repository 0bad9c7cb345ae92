package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

const errSignInDisabled = "sign-in not configured"

// Login redirects the browser to the identity provider.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Auth == nil {
			writeError(w, http.StatusServiceUnavailable, errSignInDisabled)
			return
		}
		target, err := d.Auth.Login(r.Context())
		if err != nil {
			d.Logger.Error("failed to start sign-in", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "sign-in failed")
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// Callback finishes sign-in, sets the session cookie and returns to the dashboard.
func Callback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Auth == nil {
			writeError(w, http.StatusServiceUnavailable, errSignInDisabled)
			return
		}
		id, sid, err := d.Auth.Callback(r.Context(), r.URL.Query())
		switch {
		case errors.Is(err, auth.ErrInvalidState):
			writeError(w, http.StatusBadRequest, "sign-in expired, please try again")
			return
		case err != nil:
			d.Logger.Error("sign-in failed", logger.Error(err))
			writeError(w, http.StatusBadGateway, "sign-in failed")
			return
		}

		d.Logger.Info("signed in", logger.String("owner", id.ID))
		http.SetCookie(w, sessionCookie(d, sid, int(d.SessionTTL.Seconds())))
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// SignOut drops the session and clears the cookie.
func SignOut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(d.SessionCookie); err == nil && d.Auth != nil {
			if err := d.Auth.SignOut(r.Context(), c.Value); err != nil {
				d.Logger.Warn("failed to delete session", logger.Error(err))
			}
		}
		http.SetCookie(w, sessionCookie(d, "", -1))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func sessionCookie(d deps.Deps, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     d.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   d.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
