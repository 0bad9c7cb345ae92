package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/dashboard"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsReadLimit  = 64 << 10
)

// Dashboard upgrades to a websocket and runs one live dashboard for the
// signed-in owner. Client frames are commands, server frames are
// dashboard messages, both JSON.
func Dashboard(d deps.Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(d.PublicURL, d.AllowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.IdentityFrom(r.Context())
		log := d.Logger.With(logger.String("owner", id.ID))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already answered the client.
			log.Debug("websocket upgrade failed", logger.Error(err))
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		view, err := dashboard.Open(ctx, id.ID, dashboard.Deps{
			Store:  d.Store,
			Hub:    d.Hub,
			Titles: d.Titles,
			AI:     d.AI,
			Log:    d.Logger,
			Now:    d.Now,
		})
		if err != nil {
			log.Error("failed to open dashboard", logger.Error(err))
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			_ = conn.WriteJSON(dashboard.Message{Type: dashboard.MsgError, Error: "Failed to load bookmarks."})
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "dashboard unavailable"))
			return
		}

		readerDone := make(chan struct{})
		go func() {
			defer close(readerDone)
			readCommands(ctx, conn, view, log)
		}()

		writeUpdates(conn, view, readerDone, log)

		_ = view.Close()
		_ = conn.Close()
		<-readerDone
	}
}

func readCommands(ctx context.Context, conn *websocket.Conn, view *dashboard.Dashboard, log logger.Logger) {
	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var cmd dashboard.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read ended", logger.Error(err))
			}
			return
		}
		if err := view.Send(ctx, cmd); err != nil {
			if !errors.Is(err, dashboard.ErrClosed) && !errors.Is(err, context.Canceled) {
				log.Warn("failed to queue command", logger.Error(err))
			}
			return
		}
	}
}

func writeUpdates(conn *websocket.Conn, view *dashboard.Dashboard, readerDone <-chan struct{}, log logger.Logger) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	updates := view.Updates()
	for {
		select {
		case msg, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("websocket write failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-readerDone:
			return
		}
	}
}

// originChecker accepts same-origin requests, the public URL and the
// configured origins. Requests without an Origin header are not from a
// browser and pass.
func originChecker(publicURL string, allowed []string) func(r *http.Request) bool {
	accepted := make(map[string]struct{}, len(allowed)+1)
	for _, o := range append([]string{publicURL}, allowed...) {
		if o = strings.TrimRight(strings.ToLower(o), "/"); o != "" {
			accepted[o] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := accepted[strings.ToLower(origin)]
		return ok
	}
}
