package app

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartmark/internal/config"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/realtime"
	"github.com/MrSnakeDoc/smartmark/internal/redis"
	"github.com/MrSnakeDoc/smartmark/internal/store"
	"github.com/MrSnakeDoc/smartmark/internal/store/postgres"
)

// Resources are the connections shared by serve and the CLI commands.
type Resources struct {
	Redis     *goredis.Client
	DB        *sql.DB // nil => in-memory store
	Hub       *realtime.RedisHub
	Store     store.Store // publishes every change on Hub
	StoreKind string

	pg  *postgres.Store
	log logger.Logger
}

// Open connects to redis, then to postgres when a database URL is set.
// Redis is required: it carries sessions and the live sync channel.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Resources, error) {
	log.Infof("Connecting to Redis at %s", config.RedactURL(cfg.RedisURL))
	client, err := redis.New(ctx, redis.ConnectOptions{
		URL:            cfg.RedisURL,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("Redis initialized successfully")

	res := &Resources{
		Redis: client,
		Hub:   realtime.NewRedisHub(client, log),
		log:   log,
	}

	var base store.Store
	if cfg.DatabaseURL == "" {
		log.Warn("SMARTMARK_DATABASE_URL not set, bookmarks are kept in memory and lost on restart")
		base = store.NewMemory()
		res.StoreKind = "memory"
	} else {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			res.Close()
			return nil, err
		}
		res.DB = db
		res.pg = postgres.New(db)
		base = res.pg
		res.StoreKind = "postgres"
		log.Info("Postgres initialized successfully")
	}

	res.Store = store.WithNotifications(base, res.Hub, log)
	return res, nil
}

// Close releases every connection. Safe on a partly opened value.
func (r *Resources) Close() {
	if r.DB != nil {
		if err := r.DB.Close(); err != nil {
			r.log.Warn("failed to close database", logger.Error(err))
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			r.log.Warnf("failed to close redis: %v", err)
		} else {
			r.log.Info("✅ Redis closed cleanly")
		}
	}
}

func applyMigrations(ctx context.Context, db *sql.DB, log logger.Logger) error {
	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	for _, v := range applied {
		log.Info("migration applied", logger.String("version", v))
	}
	return nil
}
