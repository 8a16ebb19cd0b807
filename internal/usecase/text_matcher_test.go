package usecase

import (
	"testing"

	"github.com/JAChelton/ai-inventory-tracker/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher(t *testing.T) *TextMatcher {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewTextMatcher(c.Vocabulary(), DefaultQuantityWindow)
}

func TestTextMatcher_Quantity(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name     string
		text     string
		wantName string
		wantQty  int
	}{
		{"leading digit", "3 dining chairs", "Dining Chair", 3},
		{"no digit", "dining chairs", "Dining Chair", 1},
		{"digit inside sentence", "antique piano and 2 dining chairs", "Dining Chair", 2},
		{"multi-digit with spaces", "12   wardrobe", "Wardrobe", 12},
		{"digit outside window", "4 big old heavy wardrobe", "Wardrobe", 1},
		{"zero counts as one", "0 armchair", "Armchair", 1},
		{"case insensitive", "2 ARMCHAIRS please", "Armchair", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := m.Match(tt.text)
			require.Len(t, matches, 1)
			assert.Equal(t, tt.wantName, matches[0].Item.Name)
			assert.Equal(t, tt.wantQty, matches[0].Quantity)
		})
	}
}

func TestTextMatcher_Span(t *testing.T) {
	m := newTestMatcher(t)

	matches := m.Match("3 Dining Chairs")
	require.Len(t, matches, 1)
	assert.Equal(t, Span{Start: 2, End: 14}, matches[0].Span)
	assert.Equal(t, "dining chair", matches[0].Keyword)
}

func TestTextMatcher_OrderAndDedup(t *testing.T) {
	m := newTestMatcher(t)

	matches := m.Match("a dining table, a coffee table and another dining table")
	require.Len(t, matches, 2)
	// Vocabulary order, not text order
	assert.Equal(t, "Coffee Table", matches[0].Item.Name)
	assert.Equal(t, "Dining Table", matches[1].Item.Name)

	matches = m.Match("bookshelf and a bookcase")
	require.Len(t, matches, 1, "one match per catalog id")
	assert.Equal(t, "bookshelf", matches[0].Keyword)
}

func TestTextMatcher_NoMatch(t *testing.T) {
	m := newTestMatcher(t)

	assert.Empty(t, m.Match(""))
	assert.Empty(t, m.Match("   "))
	assert.Empty(t, m.Match("a treadmill and a fish tank"))
}

func TestTextMatcher_SingleKeywordOccurrence(t *testing.T) {
	m := newTestMatcher(t)
	c, err := catalog.Default()
	require.NoError(t, err)

	for _, kw := range c.Vocabulary() {
		t.Run(kw.Phrase, func(t *testing.T) {
			matches := m.Match("we also have a " + kw.Phrase + " upstairs")
			found := 0
			for _, match := range matches {
				if match.Item.ID == kw.Item.ID {
					found++
					assert.Equal(t, 1, match.Quantity)
				}
			}
			assert.Equal(t, 1, found)
		})
	}
}
