// Package workflow drives one interactive analysis: upload, inspect ranges,
// choose thresholds, classify, then compare SKUs until reset.
package workflow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppa/pkg/calculator"
	"ppa/pkg/models"
	"ppa/pkg/normalize"
)

// State of a session.
type State int

const (
	AwaitingThresholds State = iota
	Classified
)

func (s State) String() string {
	switch s {
	case AwaitingThresholds:
		return "awaiting_thresholds"
	case Classified:
		return "classified"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrNotClassified is returned by operations that need a classification run.
var ErrNotClassified = errors.New("thresholds have not been applied yet")

// Session holds the uploaded datasets and the latest analysis.
// It is safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	log        *zap.Logger
	company    []models.SkuRecord
	competitor []models.SkuRecord
	shelfRows  int

	state    State
	runID    string
	analysis *models.Analysis
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithShelfRows sets the shelf row count used by every run (default 3).
func WithShelfRows(n int) Option {
	return func(s *Session) { s.shelfRows = n }
}

// NewSession normalizes both datasets and validates the company classifications
// before any thresholds are requested.
func NewSession(company, competitor []models.RawRecord, opts ...Option) (*Session, error) {
	s := &Session{log: zap.NewNop(), state: AwaitingThresholds}
	for _, opt := range opts {
		opt(s)
	}
	if err := normalize.Validate(company); err != nil {
		return nil, fmt.Errorf("company data: %w", err)
	}
	s.company = normalize.Records(company, false)
	s.competitor = normalize.Records(competitor, true)
	s.log.Info("session opened",
		zap.Int("company", len(s.company)),
		zap.Int("competitor", len(s.competitor)))
	return s, nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ranges returns the PPW range of each dataset.
func (s *Session) Ranges() models.DatasetRanges {
	return calculator.DatasetRanges(s.company, s.competitor)
}

// Classify runs the analysis with th and keeps the result. Calling it again replaces the result.
func (s *Session) Classify(th models.ThresholdSet) (*models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.NewString()
	log := s.log.With(zap.String("run_id", runID))
	a, err := calculator.Analyze(s.company, s.competitor, models.Config{Thresholds: th, ShelfRows: s.shelfRows},
		calculator.WithLogger(log))
	if err != nil {
		return nil, err
	}
	s.state, s.runID, s.analysis = Classified, runID, a
	return a, nil
}

// Analysis returns the latest analysis and its run ID.
func (s *Session) Analysis() (*models.Analysis, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Classified {
		return nil, "", ErrNotClassified
	}
	return s.analysis, s.runID, nil
}

// Compare computes the pairwise PPW index of two SKUs of the classified data.
func (s *Session) Compare(a, b string) (models.PairwiseIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Classified {
		return models.PairwiseIndex{}, ErrNotClassified
	}
	p, err := calculator.Pairwise(s.analysis.Records, a, b)
	if err != nil {
		return p, err
	}
	s.log.Debug("pairwise index", zap.String("run_id", s.runID),
		zap.String("a", a), zap.String("b", b), zap.Bool("defined", p.Index.Valid))
	return p, nil
}

// SKUs lists the SKUs available for comparison.
func (s *Session) SKUs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Classified {
		return nil, ErrNotClassified
	}
	return calculator.SKUs(s.analysis.Records), nil
}

// Reset drops the analysis and waits for new thresholds. The datasets are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.runID, s.analysis = AwaitingThresholds, "", nil
	s.log.Info("session reset")
}
