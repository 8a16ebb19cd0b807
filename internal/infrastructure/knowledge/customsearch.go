package knowledge

import (
	"context"
	"net/url"
	"strings"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// CustomSearch reads result snippets from the Google Custom Search JSON API.
type CustomSearch struct {
	client
	baseURL  string
	apiKey   string
	engineID string
}

// NewCustomSearch creates a source. Both apiKey and engineID are required by the API.
func NewCustomSearch(baseURL, apiKey, engineID string, logger zerolog.Logger) *CustomSearch {
	return &CustomSearch{
		// The free tier allows 100 queries a day; pace bursts rather than the daily quota
		client:   newClient("customsearch", rate.Limit(1), 3, logger),
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		engineID: engineID,
	}
}

// Name implements domain.KnowledgeSource.
func (s *CustomSearch) Name() string { return s.name }

// Lookup implements domain.KnowledgeSource.
func (s *CustomSearch) Lookup(ctx context.Context, query string) (*domain.SourceResult, error) {
	params := url.Values{}
	params.Add("key", s.apiKey)
	params.Add("cx", s.engineID)
	params.Add("q", query+" weight dimensions")
	params.Add("num", "3")

	var resp customSearchResponse
	if err := s.getJSON(ctx, s.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return mapCustomSearchResponse(&resp)
}
