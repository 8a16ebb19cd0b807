package usecase

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JAChelton/ai-inventory-tracker/internal/catalog"
	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
)

// DefaultQuantityWindow is how many characters before a keyword are searched for a quantity.
const DefaultQuantityWindow = 10

// Span is a half-open byte range [Start, End) in the matched text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// CatalogMatch is one catalog item found in free text.
type CatalogMatch struct {
	Item     domain.CatalogItem `json:"item"`
	Quantity int                `json:"quantity"`
	Keyword  string             `json:"keyword"`
	Span     Span               `json:"span"`
}

// TextMatcher finds catalog items referenced in free text.
type TextMatcher struct {
	vocabulary     []catalog.Keyword
	quantityWindow int
}

// NewTextMatcher builds a matcher over an ordered keyword vocabulary.
// A non-positive window falls back to DefaultQuantityWindow.
func NewTextMatcher(vocabulary []catalog.Keyword, quantityWindow int) *TextMatcher {
	if quantityWindow <= 0 {
		quantityWindow = DefaultQuantityWindow
	}
	return &TextMatcher{vocabulary: vocabulary, quantityWindow: quantityWindow}
}

// Match scans text for every vocabulary keyword in order. The first keyword that hits a
// catalog item wins; later hits for the same item id are ignored.
func (m *TextMatcher) Match(text string) []CatalogMatch {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var matches []CatalogMatch
	seen := make(map[int]bool)

	for _, kw := range m.vocabulary {
		if seen[kw.Item.ID] {
			continue
		}
		start := indexFold(text, kw.Phrase)
		if start < 0 {
			continue
		}
		seen[kw.Item.ID] = true
		matches = append(matches, CatalogMatch{
			Item:     kw.Item,
			Quantity: m.quantityBefore(text, start),
			Keyword:  kw.Phrase,
			Span:     Span{Start: start, End: start + len(kw.Phrase)},
		})
	}

	return matches
}

// quantityBefore reads an integer that ends the window preceding start, ignoring
// trailing whitespace. Missing, zero or unparseable quantities count as 1.
func (m *TextMatcher) quantityBefore(text string, start int) int {
	window := text[:start]
	if utf8.RuneCountInString(window) > m.quantityWindow {
		runes := []rune(window)
		window = string(runes[len(runes)-m.quantityWindow:])
	}
	window = strings.TrimRightFunc(window, unicode.IsSpace)

	end := len(window)
	i := end
	for i > 0 && window[i-1] >= '0' && window[i-1] <= '9' {
		i--
	}
	if i == end {
		return 1
	}

	n, err := strconv.Atoi(window[i:end])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// indexFold returns the byte offset of the first case-insensitive occurrence of the
// lowercase ASCII phrase in text, or -1.
func indexFold(text, phrase string) int {
	if phrase == "" || len(phrase) > len(text) {
		return -1
	}
	for i := 0; i+len(phrase) <= len(text); i++ {
		if !utf8.RuneStart(text[i]) {
			continue
		}
		if strings.EqualFold(text[i:i+len(phrase)], phrase) {
			return i
		}
	}
	return -1
}
