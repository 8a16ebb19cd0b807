package knowledge

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Wikipedia reads page summaries from the Wikipedia REST API.
type Wikipedia struct {
	client
	baseURL string
}

// NewWikipedia creates a source against baseURL, e.g. https://en.wikipedia.org/api/rest_v1.
func NewWikipedia(baseURL string, logger zerolog.Logger) *Wikipedia {
	return &Wikipedia{
		// Wikimedia asks API clients to stay under roughly 200 requests per second
		client:  newClient("wikipedia", rate.Limit(50), 10, logger),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name implements domain.KnowledgeSource.
func (w *Wikipedia) Name() string { return w.name }

// Lookup implements domain.KnowledgeSource.
func (w *Wikipedia) Lookup(ctx context.Context, query string) (*domain.SourceResult, error) {
	title := wikipediaTitle(query)
	if title == "" {
		return nil, domain.ErrNoResults
	}
	reqURL := fmt.Sprintf("%s/page/summary/%s", w.baseURL, url.PathEscape(title))

	var summary wikipediaSummary
	if err := w.getJSON(ctx, reqURL, &summary); err != nil {
		return nil, err
	}
	return mapWikipediaSummary(&summary)
}

// wikipediaTitle turns "antique  piano" into "Antique_piano".
func wikipediaTitle(query string) string {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return ""
	}
	title := strings.Join(words, "_")
	return strings.ToUpper(title[:1]) + title[1:]
}
