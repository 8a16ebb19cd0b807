package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/rs/zerolog"
)

// maxSourceContext caps how much of each source payload is put in the prompt.
const maxSourceContext = 1500

// StructuredExtractor asks a generative model for a JSON item record and validates it.
type StructuredExtractor struct {
	generator domain.TextGenerator
	logger    zerolog.Logger
}

// NewStructuredExtractor creates an extractor. A nil generator makes every call report
// domain.ExtractionUnavailable.
func NewStructuredExtractor(generator domain.TextGenerator, logger zerolog.Logger) *StructuredExtractor {
	return &StructuredExtractor{
		generator: generator,
		logger:    logger.With().Str("component", "extractor").Logger(),
	}
}

// Extract builds a record for phrase grounded on enrichment. Failures are always
// *domain.ExtractionError.
func (e *StructuredExtractor) Extract(ctx context.Context, phrase string, enrichment *domain.Enrichment) (domain.ItemRecord, error) {
	if e.generator == nil {
		return domain.ItemRecord{}, &domain.ExtractionError{
			Kind:   domain.ExtractionUnavailable,
			Reason: "no generative model configured",
			Err:    domain.ErrExtractionUnavailable,
		}
	}

	raw, err := e.generator.Generate(ctx, extractionSystemPrompt(), extractionUserPrompt(phrase, enrichment))
	if err != nil {
		kind := domain.ExtractionUpstream
		if errors.Is(err, domain.ErrExtractionUnavailable) {
			kind = domain.ExtractionUnavailable
		}
		return domain.ItemRecord{}, &domain.ExtractionError{Kind: kind, Reason: "model call failed", Err: err}
	}

	record, err := ParseExtraction(raw)
	if err != nil {
		return domain.ItemRecord{}, err
	}

	e.logger.Debug().
		Str("query", phrase).
		Str("name", record.Name).
		Float64("confidence", record.Confidence).
		Msg("extraction accepted")

	return record, nil
}

// extractionOutput mirrors the JSON the model is told to emit. Pointers tell a missing
// number apart from zero.
type extractionOutput struct {
	Name       string            `json:"name"`
	WeightKg   *float64          `json:"weight_kg"`
	Weight     *float64          `json:"weight"`
	Dimensions domain.Dimensions `json:"dimensions"`
	Category   string            `json:"category"`
	Confidence *float64          `json:"confidence"`
	Reasoning  string            `json:"reasoning"`
}

// ParseExtraction parses raw model output and validates it into an ItemRecord.
// Out-of-range values are rejected, never clamped.
func ParseExtraction(raw string) (domain.ItemRecord, error) {
	body := stripCodeFence(raw)
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}

	var out extractionOutput
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return domain.ItemRecord{}, &domain.ExtractionError{Kind: domain.ExtractionParse, Reason: "output is not a JSON object", Err: err}
	}

	invalid := func(reason string) (domain.ItemRecord, error) {
		return domain.ItemRecord{}, &domain.ExtractionError{Kind: domain.ExtractionValidation, Reason: reason}
	}

	name := strings.TrimSpace(out.Name)
	if name == "" {
		return invalid("name is empty")
	}

	weight := out.WeightKg
	if weight == nil {
		weight = out.Weight
	}
	if weight == nil || math.IsNaN(*weight) || math.IsInf(*weight, 0) || *weight <= 0 {
		return invalid("weight must be a positive number")
	}

	category := domain.Category(strings.ToLower(strings.TrimSpace(out.Category)))
	if !category.Valid() {
		return invalid(fmt.Sprintf("unknown category %q", out.Category))
	}

	if out.Confidence == nil || math.IsNaN(*out.Confidence) || *out.Confidence < 0 || *out.Confidence > 1 {
		return invalid("confidence must be within [0,1]")
	}

	return domain.ItemRecord{
		Name:       name,
		WeightKg:   *weight,
		Dimensions: out.Dimensions,
		Category:   category,
		Confidence: *out.Confidence,
		Reasoning:  strings.TrimSpace(out.Reasoning),
		Origin:     domain.OriginAIGenerated,
		Producer:   domain.ProducerExtractor,
	}, nil
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func extractionSystemPrompt() string {
	cats := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		cats[i] = string(c)
	}

	return `You estimate household items for a removals quote.
Respond with ONLY a JSON object, no prose and no markdown, with exactly these fields:
{
  "name": string, a short display name,
  "weight_kg": number greater than 0,
  "dimensions": string "LxWxHcm" in centimetres, or "variable",
  "category": one of [` + strings.Join(cats, ", ") + `],
  "confidence": number between 0 and 1,
  "reasoning": string, one sentence
}
Use the reference material when it helps. Lower the confidence when it does not mention size or weight.`
}

func extractionUserPrompt(phrase string, enrichment *domain.Enrichment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Item: %s\n", phrase)

	if enrichment == nil || len(enrichment.Sources) == 0 {
		b.WriteString("\nNo reference material was found.\n")
		return b.String()
	}

	b.WriteString("\nReference material:\n")
	for _, src := range enrichment.Sources {
		payload := src.Payload
		if len(payload) > maxSourceContext {
			payload = strings.ToValidUTF8(payload[:maxSourceContext], "") + "..."
		}
		if src.Title != "" {
			fmt.Fprintf(&b, "[%s] %s: %s\n", src.Source, src.Title, payload)
		} else {
			fmt.Fprintf(&b, "[%s] %s\n", src.Source, payload)
		}
	}
	return b.String()
}
