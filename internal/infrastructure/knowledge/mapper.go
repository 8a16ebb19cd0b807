package knowledge

import (
	"strings"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
)

// maxRelatedTopics caps how many DuckDuckGo related topics stand in for a missing abstract.
const maxRelatedTopics = 3

type wikipediaSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

type duckDuckGoTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

type duckDuckGoAnswer struct {
	Heading       string            `json:"Heading"`
	AbstractText  string            `json:"AbstractText"`
	AbstractURL   string            `json:"AbstractURL"`
	RelatedTopics []duckDuckGoTopic `json:"RelatedTopics"`
}

type customSearchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type customSearchResponse struct {
	Items []customSearchItem `json:"items"`
}

// mapWikipediaSummary converts a page summary; disambiguation pages carry no usable facts.
func mapWikipediaSummary(s *wikipediaSummary) (*domain.SourceResult, error) {
	extract := strings.TrimSpace(s.Extract)
	if extract == "" || s.Type == "disambiguation" {
		return nil, domain.ErrNoResults
	}
	return &domain.SourceResult{
		Source:  "wikipedia",
		Title:   s.Title,
		Payload: extract,
		URL:     s.ContentURLs.Desktop.Page,
	}, nil
}

// mapDuckDuckGoAnswer prefers the abstract and falls back to the first related topics.
func mapDuckDuckGoAnswer(a *duckDuckGoAnswer) (*domain.SourceResult, error) {
	if text := strings.TrimSpace(a.AbstractText); text != "" {
		return &domain.SourceResult{
			Source:  "duckduckgo",
			Title:   a.Heading,
			Payload: text,
			URL:     a.AbstractURL,
		}, nil
	}

	var parts []string
	firstURL := ""
	for _, topic := range a.RelatedTopics {
		text := strings.TrimSpace(topic.Text)
		if text == "" {
			continue
		}
		if firstURL == "" {
			firstURL = topic.FirstURL
		}
		parts = append(parts, text)
		if len(parts) == maxRelatedTopics {
			break
		}
	}
	if len(parts) == 0 {
		return nil, domain.ErrNoResults
	}
	return &domain.SourceResult{
		Source:  "duckduckgo",
		Title:   a.Heading,
		Payload: strings.Join(parts, "\n"),
		URL:     firstURL,
	}, nil
}

func mapCustomSearchResponse(r *customSearchResponse) (*domain.SourceResult, error) {
	var parts []string
	for _, item := range r.Items {
		if snippet := strings.TrimSpace(item.Snippet); snippet != "" {
			parts = append(parts, snippet)
		}
	}
	if len(parts) == 0 {
		return nil, domain.ErrNoResults
	}
	return &domain.SourceResult{
		Source:  "customsearch",
		Title:   r.Items[0].Title,
		Payload: strings.Join(parts, "\n"),
		URL:     r.Items[0].Link,
	}, nil
}
