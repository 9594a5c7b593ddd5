// Package assessment implements the sequential self-assessment questionnaire
// that turns answers into a normalized preference vector.
package assessment

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/category"
)

const (
	// DefaultFrequencyBonus rewards categories reinforced by many answers.
	DefaultFrequencyBonus = 2.0
	// MaxScore is the value of the strongest category after normalization.
	MaxScore = 10.0
)

// State is the lifecycle stage of an Engine.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateInProgress
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateInProgress:
		return "in_progress"
	case StateComplete:
		return "complete"
	default:
		return "uninitialized"
	}
}

// Options tune the engine.
type Options struct {
	FrequencyBonus float64
	// Logger receives debug traces. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the options reproducing the reference scoring.
func DefaultOptions() Options {
	return Options{FrequencyBonus: DefaultFrequencyBonus}
}

// Engine drives a questionnaire one question at a time. It is not safe for
// concurrent use; every session owns its own Engine.
type Engine struct {
	questions   []Question
	index       int
	answers     map[string]string
	initialized bool

	bonus  float64
	logger *zap.Logger
}

// New creates an uninitialized engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bonus := opts.FrequencyBonus
	if bonus < 0 || math.IsNaN(bonus) || math.IsInf(bonus, 0) {
		bonus = DefaultFrequencyBonus
	}

	return &Engine{
		answers: make(map[string]string),
		bonus:   bonus,
		logger:  logger,
	}
}

// Initialize validates and loads the questionnaire, starting at the first question.
func (e *Engine) Initialize(questions []Question) error {
	if err := validate(questions); err != nil {
		return err
	}

	e.questions = make([]Question, len(questions))
	for i, q := range questions {
		e.questions[i] = q.clone()
	}
	e.initialized = true
	e.Reset()

	e.logger.Debug("assessment initialized", zap.Int("questions", len(e.questions)))
	return nil
}

func validate(questions []Question) error {
	if len(questions) == 0 {
		return &DataError{Reason: "no questions provided"}
	}

	seen := make(map[string]struct{}, len(questions))
	for i, q := range questions {
		if strings.TrimSpace(q.ID) == "" {
			return &DataError{Reason: fmt.Sprintf("question #%d has an empty id", i+1)}
		}
		if _, dup := seen[q.ID]; dup {
			return &DataError{QuestionID: q.ID, Reason: "duplicate question id"}
		}
		seen[q.ID] = struct{}{}

		if len(q.Options) == 0 {
			return &DataError{QuestionID: q.ID, Reason: "question has no options"}
		}

		options := make(map[string]struct{}, len(q.Options))
		for j, o := range q.Options {
			if strings.TrimSpace(o.ID) == "" {
				return &DataError{QuestionID: q.ID, Reason: fmt.Sprintf("option #%d has an empty id", j+1)}
			}
			if _, dup := options[o.ID]; dup {
				return &DataError{QuestionID: q.ID, OptionID: o.ID, Reason: "duplicate option id"}
			}
			options[o.ID] = struct{}{}

			for _, c := range category.All() {
				w := o.Weights.Get(c)
				if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
					return &DataError{
						QuestionID: q.ID,
						OptionID:   o.ID,
						Reason:     fmt.Sprintf("weight for %s must be a non-negative number, got %v", c, w),
					}
				}
			}
		}
	}

	return nil
}

// CurrentQuestion returns the question awaiting an answer, or nil once the
// questionnaire is complete.
func (e *Engine) CurrentQuestion() (*Question, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	if e.index >= len(e.questions) {
		return nil, nil
	}
	q := e.questions[e.index].clone()
	return &q, nil
}

// SubmitAnswer records the option for the current question and advances by one.
func (e *Engine) SubmitAnswer(optionID string) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if e.IsComplete() {
		return ErrAlreadyComplete
	}

	current := &e.questions[e.index]
	if _, ok := current.FindOption(optionID); !ok {
		return &InvalidAnswerError{QuestionID: current.ID, OptionID: optionID}
	}

	e.answers[current.ID] = optionID
	e.index++

	e.logger.Debug("answer recorded",
		zap.String("question_id", current.ID),
		zap.String("option_id", optionID),
		zap.Int("index", e.index),
		zap.Int("total", len(e.questions)),
	)
	return nil
}

// IsComplete reports whether every question has been answered.
func (e *Engine) IsComplete() bool {
	return e.initialized && e.index >= len(e.questions)
}

// State returns the lifecycle stage.
func (e *Engine) State() State {
	switch {
	case !e.initialized:
		return StateUninitialized
	case e.IsComplete():
		return StateComplete
	case e.index == 0:
		return StateReady
	default:
		return StateInProgress
	}
}

// Index returns the 0-based position of the current question.
func (e *Engine) Index() int { return e.index }

// Total returns the number of questions.
func (e *Engine) Total() int { return len(e.questions) }

// Progress returns the share of answered questions as a percentage.
func (e *Engine) Progress() float64 {
	if len(e.questions) == 0 {
		return 0
	}
	return float64(e.index) / float64(len(e.questions)) * 100
}

// Answers returns a copy of the recorded question id to option id mapping.
func (e *Engine) Answers() map[string]string {
	out := make(map[string]string, len(e.answers))
	for q, o := range e.answers {
		out[q] = o
	}
	return out
}

// CalculateUserVector aggregates the recorded answers into a preference
// vector whose strongest category scores exactly MaxScore. It can be called
// at any point of the questionnaire; without answers the vector is all zeros.
func (e *Engine) CalculateUserVector() (category.Vector, error) {
	var (
		vector category.Vector
		sums   category.Vector
		counts [category.Count]int
	)

	if !e.initialized {
		return vector, ErrNotInitialized
	}

	for i := range e.questions {
		q := &e.questions[i]
		optionID, answered := e.answers[q.ID]
		if !answered {
			continue
		}
		option, ok := q.FindOption(optionID)
		if !ok {
			continue
		}
		for c, w := range option.Weights {
			if w > 0 {
				sums[c] += w
				counts[c]++
			}
		}
	}

	maxCount := 0
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		return vector, nil
	}

	for c, n := range counts {
		if n == 0 {
			continue
		}
		average := sums[c] / float64(n)
		frequency := e.bonus * float64(n) / float64(maxCount)
		vector[c] = average + frequency
	}

	top := vector.Max()
	if top > 0 {
		for c := range vector {
			vector[c] = vector[c] / top * MaxScore
		}
	}

	e.logger.Debug("user vector calculated",
		zap.Int("answers", len(e.answers)),
		zap.Float64s("vector", vector.Slice()),
	)

	return vector, nil
}

// Reset returns to the first question and forgets every answer.
func (e *Engine) Reset() {
	e.index = 0
	clear(e.answers)
}
