package usecase

import (
	"strings"
	"unicode"
)

// token is a maximal run of word characters ([A-Za-z0-9_]) with its byte offsets.
type token struct {
	text       string
	start, end int
}

// PhraseMatcher inspects the token stream anchored at index i and reports the index of the
// last token of a candidate phrase starting there.
type PhraseMatcher struct {
	Name  string
	Match func(toks []token, text string, i int) (last int, ok bool)
}

var (
	categorySuffixes = wordSet("piano", "guitar", "instrument", "tank", "bike", "machine", "equipment", "shed", "table", "rack")
	itemDescriptors  = wordSet("antique", "vintage", "old", "new", "exercise", "fitness", "garden", "pool")
	unitSuffixes     = wordSet("stand", "unit", "system", "set")
)

// DefaultPhraseMatchers is the ordered list applied by UnknownItemDetector:
// category nouns, descriptor-led phrases, then unit-word phrases.
var DefaultPhraseMatchers = []PhraseMatcher{
	{Name: "category-noun", Match: matchCategoryNoun},
	{Name: "descriptor", Match: matchDescriptor},
	{Name: "unit-word", Match: matchUnitWord},
}

// matchCategoryNoun matches "[word] word <suffix>", preferring the three-word form.
func matchCategoryNoun(toks []token, text string, i int) (int, bool) {
	if adjacent(toks, text, i, 2) && categorySuffixes[strings.ToLower(toks[i+2].text)] {
		return i + 2, true
	}
	if adjacent(toks, text, i, 1) && categorySuffixes[strings.ToLower(toks[i+1].text)] {
		return i + 1, true
	}
	return 0, false
}

// matchDescriptor matches "<descriptor> word".
func matchDescriptor(toks []token, text string, i int) (int, bool) {
	if itemDescriptors[strings.ToLower(toks[i].text)] && adjacent(toks, text, i, 1) {
		return i + 1, true
	}
	return 0, false
}

// matchUnitWord matches "<word of 4+ characters> <unit suffix>".
func matchUnitWord(toks []token, text string, i int) (int, bool) {
	if len(toks[i].text) >= 4 && adjacent(toks, text, i, 1) && unitSuffixes[strings.ToLower(toks[i+1].text)] {
		return i + 1, true
	}
	return 0, false
}

// UnknownItemDetector finds candidate item phrases the catalog does not cover.
type UnknownItemDetector struct {
	matchers []PhraseMatcher
}

// NewUnknownItemDetector returns a detector using DefaultPhraseMatchers when none are given.
func NewUnknownItemDetector(matchers ...PhraseMatcher) *UnknownItemDetector {
	if len(matchers) == 0 {
		matchers = DefaultPhraseMatchers
	}
	return &UnknownItemDetector{matchers: matchers}
}

// Detect runs every matcher over text in order, each scanning left to right without
// overlapping its own previous match. Candidates that are known phrases or exact
// duplicates of an earlier candidate are dropped.
func (d *UnknownItemDetector) Detect(text string, known []string) []string {
	toks := scanTokens(text)
	if len(toks) == 0 {
		return nil
	}

	knownLower := make([]string, 0, len(known))
	for _, k := range known {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			knownLower = append(knownLower, k)
		}
	}

	var candidates []string
	seen := make(map[string]bool)

	for _, m := range d.matchers {
		for i := 0; i < len(toks); {
			last, ok := m.Match(toks, text, i)
			if !ok {
				i++
				continue
			}
			phrase := strings.TrimSpace(text[toks[i].start:toks[last].end])
			i = last + 1

			if seen[phrase] || IsKnownPhrase(phrase, knownLower) {
				continue
			}
			seen[phrase] = true
			candidates = append(candidates, phrase)
		}
	}

	return candidates
}

// IsKnownPhrase reports whether phrase and any known name contain one another, ignoring case.
func IsKnownPhrase(phrase string, known []string) bool {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return false
	}
	for _, k := range known {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(k, p) || strings.Contains(p, k) {
			return true
		}
	}
	return false
}

// scanTokens splits text into word tokens.
func scanTokens(text string) []token {
	var toks []token
	start := -1
	for i := 0; i < len(text); i++ {
		if isWordByte(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			toks = append(toks, token{text: text[start:i], start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		toks = append(toks, token{text: text[start:], start: start, end: len(text)})
	}
	return toks
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// adjacent reports whether tokens i..i+n exist and are separated only by whitespace.
func adjacent(toks []token, text string, i, n int) bool {
	if i+n >= len(toks) {
		return false
	}
	for j := i; j < i+n; j++ {
		gap := text[toks[j].end:toks[j+1].start]
		if gap == "" || strings.TrimFunc(gap, unicode.IsSpace) != "" {
			return false
		}
	}
	return true
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
