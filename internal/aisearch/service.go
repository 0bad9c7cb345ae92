// Package aisearch matches a natural-language query against a set of
// bookmarks with one call to a language model.
package aisearch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// ErrNotConfigured is returned when no model credential is available.
var ErrNotConfigured = errors.New("aisearch: model API key not configured")

// Generator sends one prompt to a model and returns its text reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service is stateless: no ranking, caching or retry.
type Service struct {
	gen Generator
}

// New returns a Service. A nil generator makes every search fail with
// ErrNotConfigured.
func New(gen Generator) *Service {
	return &Service{gen: gen}
}

// Configured reports whether a model is available.
func (s *Service) Configured() bool { return s != nil && s.gen != nil }

// Search returns the ids of candidates matching query. The credential check
// comes first, so an unconfigured service fails even for blank queries.
func (s *Service) Search(ctx context.Context, query string, candidates []domain.Candidate) ([]string, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(query) == "" || len(candidates) == 0 {
		return []string{}, nil
	}

	text, err := s.gen.Generate(ctx, BuildPrompt(query, candidates))
	if err != nil {
		return nil, fmt.Errorf("failed to query model: %w", err)
	}

	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}
	return keepKnown(ParseIDs(text), known), nil
}
