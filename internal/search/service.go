// Package search provides symbol/name lookup against the remote API.
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/watchdeck/watchdeck/internal/models"
)

// MaxResults caps how many hits a single search returns
const MaxResults = 10

// commonStockType is the only instrument type surfaced to users
const commonStockType = "Common Stock"

// Client performs the remote symbol search
type Client interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// Service filters remote search results down to displayable equities.
// Failures are non-fatal: any error yields an empty slice.
type Service struct {
	client Client
	logger *slog.Logger
}

// NewService creates a search service
func NewService(client Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

// Search returns up to MaxResults common-stock matches for the query. Blank
// queries return empty immediately without a network call.
func (s *Service) Search(ctx context.Context, query string) []models.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SearchResult{}
	}

	results, err := s.client.Search(ctx, query)
	if err != nil {
		// Search failures are silent: the dropdown just shows nothing.
		s.logger.Debug("symbol search failed", "query", query, "error", err)
		return []models.SearchResult{}
	}

	filtered := make([]models.SearchResult, 0, MaxResults)
	for _, r := range results {
		if r.Type != commonStockType {
			continue
		}
		filtered = append(filtered, r)
		if len(filtered) == MaxResults {
			break
		}
	}
	return filtered
}
