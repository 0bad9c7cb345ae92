package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// DefaultUserInfoURL is Google's OpenID userinfo endpoint.
const DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleConfig configures Google sign-in.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint and UserInfoURL default to Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// Google signs users in with the OAuth2 code flow plus PKCE.
type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
	states      StateStore
}

func NewGoogle(cfg GoogleConfig, states StateStore) *Google {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = DefaultUserInfoURL
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfo,
		states:      states,
	}
}

func (g *Google) Begin(ctx context.Context) (string, error) {
	state, err := NewToken()
	if err != nil {
		return "", err
	}
	verifier := oauth2.GenerateVerifier()
	if err := g.states.Save(ctx, state, verifier); err != nil {
		return "", fmt.Errorf("failed to save oauth state: %w", err)
	}
	return g.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

func (g *Google) Complete(ctx context.Context, query url.Values) (domain.Identity, error) {
	if msg := query.Get("error"); msg != "" {
		return domain.Identity{}, fmt.Errorf("sign-in refused: %s", msg)
	}
	state, code := query.Get("state"), query.Get("code")
	if state == "" || code == "" {
		return domain.Identity{}, ErrInvalidState
	}

	verifier, err := g.states.Take(ctx, state)
	if err != nil {
		return domain.Identity{}, err
	}

	token, err := g.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	return g.fetchUserInfo(ctx, g.oauth.Client(ctx, token))
}

type userInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (g *Google) fetchUserInfo(ctx context.Context, client *http.Client) (domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, http.NoBody)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.Identity{}, fmt.Errorf("user info returned %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return domain.Identity{}, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Sub == "" {
		return domain.Identity{}, errors.New("user info has no subject")
	}

	return domain.Identity{
		ID:          info.Sub,
		DisplayName: info.Name,
		Email:       info.Email,
		AvatarURL:   info.Picture,
	}, nil
}
