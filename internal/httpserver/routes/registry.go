// Package routes collects route registrations. Each file registers its
// routes from init, and server.New mounts them all at once.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/mw"
)

type (
	Registrar func(r chi.Router, d deps.Deps)
	// Middleware is built once deps are known, when RegisterAll runs.
	Middleware func(d deps.Deps) func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var registry []entry

// Register a registrar with middlewares shared by all of its routes.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterAll mounts every registered route on r.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		built := make([]func(http.Handler) http.Handler, 0, len(e.mws))
		for _, m := range e.mws {
			built = append(built, m(d))
		}
		e.reg(r.With(built...), d)
	}
}

// hostChecked restricts routes to the configured Host headers.
func hostChecked(d deps.Deps) func(http.Handler) http.Handler {
	return mw.EnforceHost(d.AllowedHosts, d.Logger)
}

// signedIn restricts routes to signed-in owners.
func signedIn(deps.Deps) func(http.Handler) http.Handler {
	return mw.RequireIdentity
}

// internalOnly restricts routes to the configured CIDRs.
func internalOnly(d deps.Deps) func(http.Handler) http.Handler {
	return mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
}
