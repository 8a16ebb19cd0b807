package knowledge

import (
	"context"
	"net/url"
	"strings"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DuckDuckGo reads the DuckDuckGo Instant Answer API.
type DuckDuckGo struct {
	client
	baseURL string
}

// NewDuckDuckGo creates a source against baseURL, e.g. https://api.duckduckgo.com.
func NewDuckDuckGo(baseURL string, logger zerolog.Logger) *DuckDuckGo {
	return &DuckDuckGo{
		client:  newClient("duckduckgo", rate.Limit(1), 5, logger),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name implements domain.KnowledgeSource.
func (d *DuckDuckGo) Name() string { return d.name }

// Lookup implements domain.KnowledgeSource.
func (d *DuckDuckGo) Lookup(ctx context.Context, query string) (*domain.SourceResult, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("no_html", "1")
	params.Add("skip_disambig", "1")

	var answer duckDuckGoAnswer
	if err := d.getJSON(ctx, d.baseURL+"/?"+params.Encode(), &answer); err != nil {
		return nil, err
	}
	return mapDuckDuckGoAnswer(&answer)
}
