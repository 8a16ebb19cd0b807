// Package session turns a stream of free-text input into a growing inventory, the way an
// interactive client does: debounced passes that add catalog matches and resolve unknown phrases.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/JAChelton/ai-inventory-tracker/internal/usecase"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long input must be stable before a pass runs.
const DefaultDebounce = time.Second

// Analyzer resolves a single candidate phrase.
type Analyzer interface {
	Analyze(ctx context.Context, clientID, itemName string) (*domain.AnalysisResult, error)
}

// Failure is a candidate that could not be resolved during a pass.
type Failure struct {
	Phrase string `json:"phrase"`
	Error  string `json:"error"`
}

// Report describes what one processing pass changed.
type Report struct {
	Text     string    `json:"text"`
	Added    []Entry   `json:"added"`
	Skipped  []string  `json:"skipped,omitempty"`
	Failures []Failure `json:"failures,omitempty"`
	Totals   Totals    `json:"totals"`
}

// Config holds session settings.
type Config struct {
	ClientID string
	Debounce time.Duration
	// OnUpdate is called after every pass, on the goroutine that ran it.
	OnUpdate func(Report)
}

// Session accumulates inventory entries for one client.
type Session struct {
	known    []string
	matcher  *usecase.TextMatcher
	detector *usecase.UnknownItemDetector
	analyzer Analyzer

	items     *WorkingSet
	pending   *PendingSet
	debouncer *Debouncer

	clientID string
	onUpdate func(Report)
	run      sync.Mutex
	logger   zerolog.Logger
}

// New creates a session. catalogNames are treated as known phrases during detection.
func New(
	catalogNames []string,
	matcher *usecase.TextMatcher,
	detector *usecase.UnknownItemDetector,
	analyzer Analyzer,
	cfg Config,
	logger zerolog.Logger,
) *Session {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "local"
	}

	return &Session{
		known:     append([]string(nil), catalogNames...),
		matcher:   matcher,
		detector:  detector,
		analyzer:  analyzer,
		items:     NewWorkingSet(),
		pending:   NewPendingSet(),
		debouncer: NewDebouncer(debounce),
		clientID:  clientID,
		onUpdate:  cfg.OnUpdate,
		logger:    logger.With().Str("component", "session").Str("client", clientID).Logger(),
	}
}

// Items returns the session's working set.
func (s *Session) Items() *WorkingSet {
	return s.items
}

// Input schedules a pass over text once input has been stable for the debounce interval.
// Newer input replaces text that has not been processed yet. Blank input is ignored.
func (s *Session) Input(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	s.debouncer.Trigger(func() {
		s.Process(ctx, text)
	})
}

// Flush runs any scheduled pass immediately. It reports whether one ran.
func (s *Session) Flush() bool {
	return s.debouncer.Flush()
}

// Close drops any scheduled pass.
func (s *Session) Close() {
	s.debouncer.Stop()
}

// Process runs one pass over text. Passes never overlap: a second caller waits for the first.
//
// Catalog matches are added first, once per catalog item. Unknown phrases are then resolved one
// at a time in detection order; phrases already in the working set or already being resolved
// are skipped.
func (s *Session) Process(ctx context.Context, text string) Report {
	s.run.Lock()
	defer s.run.Unlock()

	report := Report{Text: text, Added: []Entry{}}
	if strings.TrimSpace(text) == "" {
		report.Totals = s.items.Totals()
		return report
	}

	for _, m := range s.matcher.Match(text) {
		if entry, ok := s.items.AddCatalog(m.Item, m.Quantity); ok {
			report.Added = append(report.Added, entry)
		}
	}

	known := append(append([]string(nil), s.known...), s.items.Names()...)
	for _, phrase := range s.detector.Detect(text, known) {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, Failure{Phrase: phrase, Error: err.Error()})
			break
		}

		entry, err := s.resolve(ctx, phrase)
		switch {
		case errors.Is(err, errSkipped):
			report.Skipped = append(report.Skipped, phrase)
		case err != nil:
			report.Failures = append(report.Failures, Failure{Phrase: phrase, Error: err.Error()})
			s.logger.Warn().Err(err).Str("phrase", phrase).Msg("could not resolve phrase")
		default:
			report.Added = append(report.Added, entry)
		}

		var rateErr *domain.RateLimitError
		if errors.As(err, &rateErr) {
			break
		}
	}

	report.Totals = s.items.Totals()
	s.logger.Debug().
		Int("added", len(report.Added)).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failures)).
		Msg("processed input")

	if s.onUpdate != nil {
		s.onUpdate(report)
	}
	return report
}

var errSkipped = errors.New("already present")

func (s *Session) resolve(ctx context.Context, phrase string) (Entry, error) {
	if s.items.HasOriginal(phrase) {
		return Entry{}, errSkipped
	}

	key := usecase.NormalizeKey(phrase)
	if !s.pending.Add(key) {
		return Entry{}, errSkipped
	}
	defer s.pending.Remove(key)

	result, err := s.analyzer.Analyze(ctx, s.clientID, phrase)
	if err != nil {
		return Entry{}, err
	}

	entry, ok := s.items.AddResolved(phrase, result.Item)
	if !ok {
		return Entry{}, errSkipped
	}
	return entry, nil
}
