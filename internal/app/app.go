package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/smartmark/internal/aisearch"
	"github.com/MrSnakeDoc/smartmark/internal/aisearch/gemini"
	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/config"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	redisstore "github.com/MrSnakeDoc/smartmark/internal/store/redis"
	"github.com/MrSnakeDoc/smartmark/internal/titlefetch"
	"github.com/MrSnakeDoc/smartmark/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	res    *Resources
}

// New connects every collaborator and builds the HTTP server.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	res, err := Open(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	if res.DB != nil {
		if err := applyMigrations(ctx, res.DB, loggerClient); err != nil {
			res.Close()
			return nil, err
		}
	}

	ai, err := newAISearch(ctx, cfg, loggerClient)
	if err != nil {
		res.Close()
		return nil, err
	}

	sessions := redisstore.NewSessions(res.Redis, cfg.SessionTTL)
	authSvc, authMode := newAuth(cfg, res.Redis, sessions, loggerClient)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		PublicURL:      cfg.PublicURL,
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		SessionCookie:  cfg.SessionCookie,
		SessionTTL:     cfg.SessionTTL,
		CookieSecure:   cfg.CookieSecure,
		RedisClient:    res.Redis,
		StoreKind:      res.StoreKind,
		Store:          res.Store,
		Hub:            res.Hub,
		Titles:         titlefetch.New(),
		AI:             ai,
		Auth:           authSvc,
		AuthMode:       authMode,
		Sessions:       sessions,
	}
	if res.pg != nil {
		d.Database = res.pg
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg, loggerClient, d),
		res:    res,
	}, nil
}

func newAISearch(ctx context.Context, cfg *config.Config, log logger.Logger) (*aisearch.Service, error) {
	if !cfg.AIEnabled() {
		log.Warn("GOOGLE_API_KEY not set, AI search will answer a configuration error")
		return aisearch.New(nil), nil
	}
	gen, err := gemini.New(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	log.Info("AI search enabled", logger.String("model", cfg.GeminiModel))
	return aisearch.New(gen), nil
}

func newAuth(cfg *config.Config, client *goredis.Client, sessions auth.SessionStore, log logger.Logger) (*auth.Service, string) {
	switch {
	case cfg.OAuthEnabled():
		google := auth.NewGoogle(auth.GoogleConfig{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL(),
		}, redisstore.NewOAuthStates(client))
		log.Info("Google sign-in enabled", logger.String("redirect_url", cfg.OAuthRedirectURL()))
		return auth.NewService(google, sessions), "google"
	case cfg.DevUser != "":
		log.Warn("no OAuth client configured, every visitor signs in as the dev user",
			logger.String("owner", cfg.DevUser))
		dev := auth.NewDev(domain.Identity{ID: cfg.DevUser, DisplayName: cfg.DevUser}, "/auth/callback")
		return auth.NewService(dev, sessions), "dev"
	default:
		log.Warn("no OAuth client and no dev user configured, sign-in disabled")
		return nil, ""
	}
}

// Run serves until ctx is canceled or the server fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting smartmark %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())
	defer a.res.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("✅ smartmark stopped cleanly")
	return nil
}
