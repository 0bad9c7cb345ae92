// Package auth signs owners in through an external identity provider and
// tracks their sessions.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

var (
	// ErrNoSession means the session id is unknown or expired.
	ErrNoSession = errors.New("no session")
	// ErrInvalidState means the callback did not match a pending sign-in.
	ErrInvalidState = errors.New("invalid oauth state")
)

// SessionStore keeps signed-in identities behind opaque session ids.
type SessionStore interface {
	Create(ctx context.Context, id domain.Identity) (string, error)
	Get(ctx context.Context, sessionID string) (domain.Identity, error)
	Delete(ctx context.Context, sessionID string) error
}

// StateStore remembers pending sign-ins. Take must consume the state so a
// callback cannot be replayed.
type StateStore interface {
	Save(ctx context.Context, state, verifier string) error
	Take(ctx context.Context, state string) (string, error)
}

// Provider runs the redirect-based sign-in.
type Provider interface {
	// Begin returns the url to redirect the browser to.
	Begin(ctx context.Context) (string, error)
	// Complete handles the callback query and returns who signed in.
	Complete(ctx context.Context, query url.Values) (domain.Identity, error)
}

// Service ties a provider to the session store.
type Service struct {
	provider Provider
	sessions SessionStore
}

func NewService(provider Provider, sessions SessionStore) *Service {
	return &Service{provider: provider, sessions: sessions}
}

func (s *Service) Login(ctx context.Context) (string, error) {
	return s.provider.Begin(ctx)
}

// Callback completes sign-in and opens a session.
func (s *Service) Callback(ctx context.Context, query url.Values) (domain.Identity, string, error) {
	id, err := s.provider.Complete(ctx, query)
	if err != nil {
		return domain.Identity{}, "", err
	}
	sid, err := s.sessions.Create(ctx, id)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, sid, nil
}

// Identify resolves a session id.
func (s *Service) Identify(ctx context.Context, sessionID string) (domain.Identity, error) {
	if sessionID == "" {
		return domain.Identity{}, ErrNoSession
	}
	return s.sessions.Get(ctx, sessionID)
}

func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// NewToken returns a random url-safe token.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type ctxKey struct{}

// WithIdentity stores the signed-in identity on ctx.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(domain.Identity)
	return id, ok && id.ID != ""
}
