// Package session ties one assessment engine and one matching engine to a
// single user.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/assessment"
	"github.com/spigell/company-matcher/internal/category"
	"github.com/spigell/company-matcher/internal/matching"
	"github.com/spigell/company-matcher/internal/metrics"
)

// ErrIncomplete signals a ranking requested before every question was answered.
var ErrIncomplete = errors.New("questionnaire is not complete")

// Config configures a session.
type Config struct {
	Questions  []assessment.Question
	Companies  []matching.CompanyProfile
	Assessment assessment.Options
	Matching   matching.Config
	// AllowPartial ranks companies from an unfinished questionnaire.
	AllowPartial bool
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
}

// Session owns the engine pair of one user. It is not safe for concurrent use.
type Session struct {
	ID        string
	StartedAt time.Time

	Assessment *assessment.Engine
	Matching   *matching.Engine

	allowPartial bool
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// Match is the outcome of a ranking.
type Match struct {
	User    category.Vector
	Results *matching.Results
}

// New creates a session with freshly initialized engines.
func New(cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	id := uuid.NewString()
	logger = logger.With(zap.String("session_id", id))

	opts := cfg.Assessment
	opts.Logger = logger.Named("assessment")
	a := assessment.New(opts)
	if err := a.Initialize(cfg.Questions); err != nil {
		return nil, fmt.Errorf("initialize assessment: %w", err)
	}

	m := matching.New(cfg.Matching, logger.Named("matching"))
	m.Initialize(cfg.Companies)

	logger.Debug("session started",
		zap.Int("questions", len(cfg.Questions)),
		zap.Int("companies", len(cfg.Companies)),
	)

	return &Session{
		ID:           id,
		StartedAt:    time.Now(),
		Assessment:   a,
		Matching:     m,
		allowPartial: cfg.AllowPartial,
		metrics:      cfg.Metrics,
		logger:       logger,
	}, nil
}

// Answer submits an option for the current question.
func (s *Session) Answer(optionID string) error {
	if err := s.Assessment.SubmitAnswer(optionID); err != nil {
		return err
	}
	s.metrics.ObserveAnswer()
	return nil
}

// Preview returns the user vector for the answers given so far.
func (s *Session) Preview() (category.Vector, error) {
	return s.Assessment.CalculateUserVector()
}

// Match computes the user vector and ranks the catalog.
func (s *Session) Match() (*Match, error) {
	if !s.Assessment.IsComplete() && !s.allowPartial {
		return nil, ErrIncomplete
	}

	user, err := s.Assessment.CalculateUserVector()
	if err != nil {
		return nil, fmt.Errorf("calculate user vector: %w", err)
	}

	results, err := s.Matching.FindMatchingCompanies(user.Slice())
	if err != nil {
		return nil, fmt.Errorf("rank companies: %w", err)
	}

	scores := make([]float64, 0, results.Len())
	for _, r := range results.Items {
		scores = append(scores, r.Score)
	}
	s.metrics.ObserveRanking(scores)

	s.logger.Info("companies ranked", zap.Int("results", results.Len()))

	return &Match{User: user, Results: results}, nil
}

// Restart clears every answer and starts over.
func (s *Session) Restart() {
	s.Assessment.Reset()
	s.logger.Debug("session restarted")
}
