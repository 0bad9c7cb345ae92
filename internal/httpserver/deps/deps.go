package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartmark/internal/aisearch"
	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/dashboard"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/realtime"
	"github.com/MrSnakeDoc/smartmark/internal/store"
)

// Pinger reports whether a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports the number of live sessions.
type SessionCounter interface {
	Count(ctx context.Context) (int, error)
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	PublicURL      string   // externally visible base URL
	AllowedOrigins []string // browser origins allowed for CORS and the websocket
	AllowedHosts   []string // Host headers allowed on /api and /auth
	AllowedCIDRS   []string // IPs allowed to access readyz/infra endpoints
	TrustProxy     bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)

	SessionCookie string
	SessionTTL    time.Duration
	CookieSecure  bool

	RedisClient *redis.Client // Redis client connection (sessions, push channel)
	Database    Pinger        // nil when running on the in-memory store
	StoreKind   string        // "postgres" | "memory"
	Store       store.Store   // bookmark persistence, publishes changes
	Hub         realtime.Hub  // push-notification channel
	Titles      dashboard.TitleFetcher
	AI          *aisearch.Service
	Auth        *auth.Service // nil => sign-in disabled
	AuthMode    string        // "google" | "dev"

	Sessions SessionCounter // optional, reported on /infra
}

// Now returns d.TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
