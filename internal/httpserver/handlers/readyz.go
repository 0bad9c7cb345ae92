package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

const readyTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz answers 503 until redis and, when configured, the database answer a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := pingAll(ctx, d); err != nil {
			d.Logger.Warn("not ready", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}

func pingAll(ctx context.Context, d deps.Deps) error {
	if d.RedisClient != nil {
		if err := d.RedisClient.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	if d.Database != nil {
		if err := d.Database.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}
