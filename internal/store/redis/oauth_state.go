package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
)

// OAuthStateTTL bounds how long a sign-in may take
const OAuthStateTTL = 10 * time.Minute

// OAuthStates keeps pending sign-ins with their PKCE verifier.
type OAuthStates struct {
	client *redis.Client
}

func NewOAuthStates(client *redis.Client) *OAuthStates {
	return &OAuthStates{client: client}
}

func (s *OAuthStates) Save(ctx context.Context, state, verifier string) error {
	if err := s.client.Set(ctx, OAuthStateKey(state), verifier, OAuthStateTTL).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// Take returns and removes the verifier of state in one round trip
func (s *OAuthStates) Take(ctx context.Context, state string) (string, error) {
	verifier, err := s.client.GetDel(ctx, OAuthStateKey(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", auth.ErrInvalidState
		}
		return "", fmt.Errorf("failed to take oauth state: %w", err)
	}
	return verifier, nil
}
