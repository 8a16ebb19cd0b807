package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	knownPatternConfidence = 0.75
	fuzzyPatternConfidence = 0.65
	genericConfidence      = 0.6
	defaultWeightKg        = 25.0
	minReverseMatchLength  = 3
)

// knownPattern is a fixed estimate for a recognizable item.
type knownPattern struct {
	key        string
	weightKg   float64
	dimensions domain.Dimensions
	category   domain.Category
}

// knownPatterns is ordered: more specific keys come before the keys they contain.
var knownPatterns = []knownPattern{
	{"grand piano", 300, dims(150, 150, 100), domain.CategoryMusical},
	{"upright piano", 230, dims(150, 60, 120), domain.CategoryMusical},
	{"piano", 180, dims(150, 60, 110), domain.CategoryMusical},
	{"treadmill", 90, dims(180, 80, 140), domain.CategoryFitness},
	{"exercise bike", 45, dims(120, 60, 140), domain.CategoryFitness},
	{"pool table", 350, dims(250, 140, 80), domain.CategoryRecreation},
	{"hot tub", 400, dims(200, 200, 90), domain.CategoryOutdoor},
	{"gun safe", 150, dims(60, 50, 90), domain.CategoryStorage},
	{"safe", 150, dims(60, 50, 90), domain.CategoryStorage},
	{"fish tank", 35, dims(120, 40, 50), domain.CategoryMisc},
	{"aquarium", 35, dims(120, 40, 50), domain.CategoryMisc},
	{"washing machine", 70, dims(60, 60, 85), domain.CategoryAppliances},
	{"garden shed", 200, dims(240, 180, 210), domain.CategoryOutdoor},
}

type genericKeyword struct {
	word     string
	weightKg float64
	category domain.Category
}

var genericKeywords = []genericKeyword{
	{"table", 30, domain.CategoryTables},
	{"desk", 35, domain.CategoryTables},
	{"chair", 8, domain.CategorySeating},
	{"sofa", 45, domain.CategorySeating},
	{"couch", 45, domain.CategorySeating},
	{"bed", 45, domain.CategoryBedroom},
	{"wardrobe", 80, domain.CategoryStorage},
	{"dresser", 40, domain.CategoryStorage},
	{"cabinet", 40, domain.CategoryStorage},
	{"tv", 15, domain.CategoryElectronics},
	{"fridge", 70, domain.CategoryAppliances},
	{"bike", 15, domain.CategoryFitness},
}

var sizeMultipliers = map[string]float64{
	"large": 1.5,
	"big":   1.5,
	"small": 0.7,
	"mini":  0.7,
}

func (h *HeuristicFallback) patternRecord(phrase string, p knownPattern, confidence float64, reasoning string) domain.ItemRecord {
	return domain.ItemRecord{
		Name:       h.displayName(phrase),
		WeightKg:   p.weightKg,
		Dimensions: p.dimensions,
		Category:   p.category,
		Confidence: confidence,
		Reasoning:  reasoning,
		Origin:     domain.OriginAIGenerated,
		Producer:   domain.ProducerHeuristic,
	}
}

func dims(l, w, h float64) domain.Dimensions {
	return domain.Dimensions{LengthCm: l, WidthCm: w, HeightCm: h}
}

// HeuristicFallback estimates an item record from its name alone. It never fails.
type HeuristicFallback struct{}

// NewHeuristicFallback creates the rule-based estimator.
func NewHeuristicFallback() *HeuristicFallback {
	return &HeuristicFallback{}
}

// KnownPattern returns the fixed estimate for phrase when it hits the known-pattern table.
// Only exact and substring hits count; near-miss spellings are left to Estimate.
func (h *HeuristicFallback) KnownPattern(phrase string) (domain.ItemRecord, bool) {
	p, ok := lookupKnownPattern(NormalizeKey(phrase))
	if !ok {
		return domain.ItemRecord{}, false
	}
	return h.patternRecord(phrase, p, knownPatternConfidence, fmt.Sprintf("Matched known item pattern %q", p.key)), true
}

// Estimate builds a record for phrase: a known-pattern hit when there is one, then a close
// spelling of a known pattern at lower confidence, otherwise a generic estimate from keywords
// and size words.
func (h *HeuristicFallback) Estimate(phrase string) domain.ItemRecord {
	if record, ok := h.KnownPattern(phrase); ok {
		return record
	}
	if p, ok := lookupFuzzyPattern(NormalizeKey(phrase)); ok {
		return h.patternRecord(phrase, p, fuzzyPatternConfidence, fmt.Sprintf("Close spelling of known item pattern %q", p.key))
	}

	words := strings.Fields(NormalizeKey(phrase))

	weight := defaultWeightKg
	category := domain.CategoryMisc
	reasoning := "No recognizable keyword, using default estimate"
	if kw, ok := findGenericKeyword(words); ok {
		weight = kw.weightKg
		category = kw.category
		reasoning = fmt.Sprintf("Estimated from keyword %q", kw.word)
	}

	for _, w := range words {
		if factor, ok := sizeMultipliers[w]; ok {
			weight *= factor
			reasoning += fmt.Sprintf(", scaled x%g for %q", factor, w)
		}
	}

	return domain.ItemRecord{
		Name:       h.displayName(phrase),
		WeightKg:   math.Round(weight*10) / 10,
		Dimensions: domain.Dimensions{},
		Category:   category,
		Confidence: genericConfidence,
		Reasoning:  reasoning,
		Origin:     domain.OriginAIGenerated,
		Producer:   domain.ProducerHeuristic,
	}
}

// lookupKnownPattern tries exact keys, then keys inside the phrase, then the phrase inside a key.
func lookupKnownPattern(key string) (knownPattern, bool) {
	if key == "" {
		return knownPattern{}, false
	}
	for _, p := range knownPatterns {
		if key == p.key {
			return p, true
		}
	}
	for _, p := range knownPatterns {
		if strings.Contains(key, p.key) {
			return p, true
		}
	}
	if len(key) >= minReverseMatchLength {
		for _, p := range knownPatterns {
			if strings.Contains(p.key, key) {
				return p, true
			}
		}
	}
	return knownPattern{}, false
}

// lookupFuzzyPattern finds a key whose words all appear in the phrase up to a one-letter typo.
func lookupFuzzyPattern(key string) (knownPattern, bool) {
	words := strings.Fields(key)
	for _, p := range knownPatterns {
		if fuzzyContainsKey(words, p.key) {
			return p, true
		}
	}
	return knownPattern{}, false
}

// findGenericKeyword returns the first table keyword present as a word, allowing a plural "s".
func findGenericKeyword(words []string) (genericKeyword, bool) {
	for _, kw := range genericKeywords {
		for _, w := range words {
			w = strings.Trim(w, ".,;:!?\"'()")
			if w == kw.word || w == kw.word+"s" || w == kw.word+"es" {
				return kw, true
			}
		}
	}
	return genericKeyword{}, false
}

func (h *HeuristicFallback) displayName(phrase string) string {
	name := multipleSpacesRegex.ReplaceAllString(strings.TrimSpace(phrase), " ")
	if name == "" {
		return "Unknown Item"
	}
	// A Caser keeps state, so one is built per call. NoLower keeps acronyms such as "TV".
	return cases.Title(language.English, cases.NoLower).String(name)
}
