package domain

import "time"

// SourceResult is the payload one knowledge source returned for a query.
type SourceResult struct {
	Source  string `json:"source"`
	Title   string `json:"title,omitempty"`
	Payload string `json:"payload"`
	URL     string `json:"url,omitempty"`
}

// Enrichment is the combined fan-out result for a candidate phrase.
type Enrichment struct {
	Query     string         `json:"query"`
	Sources   []SourceResult `json:"sources"`
	Timestamp time.Time      `json:"timestamp"`
}

// AnalyzeRequest is the body of POST /api/inventory/analyze.
type AnalyzeRequest struct {
	ItemName string `json:"itemName"`
}

// AnalysisResult is the response of a resolved analyze call.
type AnalysisResult struct {
	Item      ItemRecord     `json:"item"`
	Sources   []SourceResult `json:"sources"`
	Timestamp time.Time      `json:"timestamp"`
	Cached    bool           `json:"-"`
}
