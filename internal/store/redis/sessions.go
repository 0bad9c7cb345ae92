package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// DefaultSessionTTL is used when NewSessions is given a non-positive ttl.
const DefaultSessionTTL = 7 * 24 * time.Hour

type sessionData struct {
	Identity  domain.Identity `json:"identity"`
	CreatedAt time.Time       `json:"created_at"`
}

// Sessions stores signed-in identities as JSON with a TTL.
type Sessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessions(client *redis.Client, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{client: client, ttl: ttl}
}

// Create stores id under a fresh random session id
func (s *Sessions) Create(ctx context.Context, id domain.Identity) (string, error) {
	sid, err := auth.NewToken()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(sessionData{Identity: id, CreatedAt: time.Now().UTC()})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, SessionKey(sid), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return sid, nil
}

// Get returns the identity of a live session
func (s *Sessions) Get(ctx context.Context, sid string) (domain.Identity, error) {
	data, err := s.client.Get(ctx, SessionKey(sid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Identity{}, auth.ErrNoSession
		}
		return domain.Identity{}, fmt.Errorf("failed to get session: %w", err)
	}

	var sd sessionData
	if err := json.Unmarshal(data, &sd); err != nil {
		return domain.Identity{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if sd.Identity.ID == "" {
		return domain.Identity{}, auth.ErrNoSession
	}
	return sd.Identity, nil
}

// Delete ends a session. Unknown ids are ignored.
func (s *Sessions) Delete(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, SessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Count returns the number of live sessions
func (s *Sessions) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixSession+"*", 0).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}
