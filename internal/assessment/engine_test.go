package assessment

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/company-matcher/internal/category"
)

const tolerance = 1e-9

func weights(pairs map[category.Category]float64) category.Vector {
	var v category.Vector
	for c, w := range pairs {
		v[c] = w
	}
	return v
}

// sampleQuestions mirrors the documented example: Q1 offers a values-only
// option and a growth-heavy one, the rest only carry zero weights.
func sampleQuestions() []Question {
	return []Question{
		{
			ID:     "q1",
			Prompt: "What matters most?",
			Options: []Option{
				{ID: "a", Text: "Purpose", Weights: weights(map[category.Category]float64{category.Values: 5})},
				{ID: "b", Text: "Learning", Weights: weights(map[category.Category]float64{category.Growth: 3, category.Values: 1})},
			},
		},
		{
			ID:     "q2",
			Prompt: "Filler",
			Options: []Option{
				{ID: "neutral", Text: "No preference"},
				{ID: "other", Text: "Something else"},
			},
		},
		{
			ID:     "q3",
			Prompt: "Filler again",
			Options: []Option{
				{ID: "neutral", Text: "No preference"},
				{ID: "other", Text: "Something else"},
			},
		},
	}
}

func newInitialized(t *testing.T, questions []Question) *Engine {
	t.Helper()
	e := New(DefaultOptions())
	if err := e.Initialize(questions); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return e
}

func TestInitializeRejectsMalformedData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		questions []Question
	}{
		{name: "empty", questions: nil},
		{name: "no options", questions: []Question{{ID: "q1"}}},
		{name: "empty question id", questions: []Question{{Options: []Option{{ID: "a"}}}}},
		{name: "duplicate question", questions: []Question{
			{ID: "q1", Options: []Option{{ID: "a"}}},
			{ID: "q1", Options: []Option{{ID: "a"}}},
		}},
		{name: "duplicate option", questions: []Question{{ID: "q1", Options: []Option{{ID: "a"}, {ID: "a"}}}}},
		{name: "negative weight", questions: []Question{{ID: "q1", Options: []Option{
			{ID: "a", Weights: weights(map[category.Category]float64{category.Growth: -1})},
		}}}},
		{name: "nan weight", questions: []Question{{ID: "q1", Options: []Option{
			{ID: "a", Weights: weights(map[category.Category]float64{category.Growth: math.NaN()})},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := New(DefaultOptions())
			err := e.Initialize(tt.questions)
			if !errors.Is(err, ErrData) {
				t.Fatalf("expected ErrData, got %v", err)
			}
			var dataErr *DataError
			if !errors.As(err, &dataErr) {
				t.Fatalf("expected *DataError, got %T", err)
			}
			if e.State() != StateUninitialized {
				t.Fatalf("expected engine to stay uninitialized, got %s", e.State())
			}
		})
	}
}

func TestCallsBeforeInitialize(t *testing.T) {
	e := New(DefaultOptions())

	if _, err := e.CurrentQuestion(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized from CurrentQuestion, got %v", err)
	}
	if err := e.SubmitAnswer("a"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized from SubmitAnswer, got %v", err)
	}
	if _, err := e.CalculateUserVector(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized from CalculateUserVector, got %v", err)
	}
	if e.IsComplete() {
		t.Fatal("uninitialized engine must not report completion")
	}

	// Reset is always safe.
	e.Reset()
}

func TestSequentialFlow(t *testing.T) {
	questions := sampleQuestions()
	e := newInitialized(t, questions)

	if e.State() != StateReady {
		t.Fatalf("expected ready state, got %s", e.State())
	}

	for i, q := range questions {
		current, err := e.CurrentQuestion()
		if err != nil {
			t.Fatalf("current question: %v", err)
		}
		if current == nil || current.ID != q.ID {
			t.Fatalf("expected question %s, got %+v", q.ID, current)
		}
		if e.Index() != i {
			t.Fatalf("expected index %d, got %d", i, e.Index())
		}
		if err := e.SubmitAnswer(q.Options[0].ID); err != nil {
			t.Fatalf("submit answer: %v", err)
		}
		if e.Index() != i+1 {
			t.Fatalf("expected index to advance to %d, got %d", i+1, e.Index())
		}
		if i+1 < len(questions) && e.State() != StateInProgress {
			t.Fatalf("expected in-progress state, got %s", e.State())
		}
	}

	if !e.IsComplete() || e.State() != StateComplete {
		t.Fatalf("expected complete engine, got %s", e.State())
	}
	if e.Progress() != 100 {
		t.Fatalf("expected progress 100, got %v", e.Progress())
	}

	current, err := e.CurrentQuestion()
	if err != nil || current != nil {
		t.Fatalf("expected no question after completion, got %+v, %v", current, err)
	}

	if err := e.SubmitAnswer("a"); !errors.Is(err, ErrAlreadyComplete) {
		t.Fatalf("expected ErrAlreadyComplete, got %v", err)
	}
	if e.Index() != len(questions) {
		t.Fatalf("index changed after rejected answer: %d", e.Index())
	}
}

func TestSubmitAnswerRejectsUnknownOption(t *testing.T) {
	e := newInitialized(t, sampleQuestions())

	err := e.SubmitAnswer("neutral")
	if !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}

	var answerErr *InvalidAnswerError
	if !errors.As(err, &answerErr) {
		t.Fatalf("expected *InvalidAnswerError, got %T", err)
	}
	if answerErr.QuestionID != "q1" || answerErr.OptionID != "neutral" {
		t.Fatalf("unexpected error details: %+v", answerErr)
	}
	if e.Index() != 0 {
		t.Fatalf("index must not advance on invalid answer, got %d", e.Index())
	}
}

func TestCalculateUserVectorDocumentedExample(t *testing.T) {
	e := newInitialized(t, sampleQuestions())

	for _, id := range []string{"a", "neutral", "neutral"} {
		if err := e.SubmitAnswer(id); err != nil {
			t.Fatalf("submit %s: %v", id, err)
		}
	}

	vector, err := e.CalculateUserVector()
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	for _, c := range category.All() {
		expect := 0.0
		if c == category.Values {
			expect = 10
		}
		if math.Abs(vector.Get(c)-expect) > tolerance {
			t.Fatalf("category %s: expected %v, got %v", c, expect, vector.Get(c))
		}
	}
}

func TestCalculateUserVectorFrequencyBonus(t *testing.T) {
	questions := []Question{
		{ID: "q1", Options: []Option{{ID: "x", Weights: weights(map[category.Category]float64{category.Growth: 4, category.Stability: 5})}}},
		{ID: "q2", Options: []Option{{ID: "x", Weights: weights(map[category.Category]float64{category.Growth: 4})}}},
	}
	e := newInitialized(t, questions)
	for range questions {
		if err := e.SubmitAnswer("x"); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	vector, err := e.CalculateUserVector()
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	// growth: avg 4 + 2*(2/2) = 6; stability: avg 5 + 2*(1/2) = 6.
	// Both tie at the maximum, so both normalize to 10.
	if math.Abs(vector.Get(category.Growth)-10) > tolerance {
		t.Fatalf("unexpected growth score: %v", vector.Get(category.Growth))
	}
	if math.Abs(vector.Get(category.Stability)-10) > tolerance {
		t.Fatalf("unexpected stability score: %v", vector.Get(category.Stability))
	}

	// A single strong answer is outranked by a consistently reinforced category.
	questions = []Question{
		{ID: "q1", Options: []Option{{ID: "x", Weights: weights(map[category.Category]float64{category.Growth: 3, category.Diversity: 4})}}},
		{ID: "q2", Options: []Option{{ID: "x", Weights: weights(map[category.Category]float64{category.Growth: 3})}}},
		{ID: "q3", Options: []Option{{ID: "x", Weights: weights(map[category.Category]float64{category.Growth: 3})}}},
	}
	e = newInitialized(t, questions)
	for range questions {
		if err := e.SubmitAnswer("x"); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	vector, err = e.CalculateUserVector()
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	// growth: 3 + 2 = 5 -> 10; diversity: 4 + 2/3 -> 4.6667/5*10.
	expectDiversity := (4 + 2.0/3.0) / 5 * 10
	if math.Abs(vector.Get(category.Growth)-10) > tolerance {
		t.Fatalf("unexpected growth score: %v", vector.Get(category.Growth))
	}
	if math.Abs(vector.Get(category.Diversity)-expectDiversity) > tolerance {
		t.Fatalf("expected diversity %v, got %v", expectDiversity, vector.Get(category.Diversity))
	}
}

func TestCalculateUserVectorMaxIsTen(t *testing.T) {
	questions := []Question{
		{ID: "q1", Options: []Option{
			{ID: "a", Weights: weights(map[category.Category]float64{category.WorkStyle: 0.3, category.Evaluation: 0.7})},
			{ID: "b", Weights: weights(map[category.Category]float64{category.Organization: 9})},
		}},
		{ID: "q2", Options: []Option{
			{ID: "a", Weights: weights(map[category.Category]float64{category.Evaluation: 2, category.Relationships: 1})},
		}},
		{ID: "q3", Options: []Option{
			{ID: "a", Weights: weights(map[category.Category]float64{category.CustomerContact: 12})},
		}},
	}
	e := newInitialized(t, questions)

	// Live preview is available before completion.
	for i := range questions {
		if err := e.SubmitAnswer("a"); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		vector, err := e.CalculateUserVector()
		if err != nil {
			t.Fatalf("calculate: %v", err)
		}
		if math.Abs(vector.Max()-10) > tolerance {
			t.Fatalf("after %d answers expected max 10, got %v", i+1, vector.Max())
		}
		for _, x := range vector {
			if x < 0 || x > 10+tolerance {
				t.Fatalf("component out of range: %v", vector)
			}
		}
	}
}

func TestCalculateUserVectorWithoutPositiveWeights(t *testing.T) {
	e := newInitialized(t, sampleQuestions())

	vector, err := e.CalculateUserVector()
	if err != nil {
		t.Fatalf("calculate without answers: %v", err)
	}
	if !vector.IsZero() {
		t.Fatalf("expected zero vector without answers, got %v", vector)
	}

	if err := e.SubmitAnswer("b"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := e.SubmitAnswer("neutral"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Only the filler answer carries zero weights, the first one does not.
	vector, err = e.CalculateUserVector()
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if vector.IsZero() {
		t.Fatal("expected non-zero vector")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	e := newInitialized(t, sampleQuestions())
	if err := e.SubmitAnswer("a"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	for i := 0; i < 3; i++ {
		e.Reset()

		if e.Index() != 0 || len(e.Answers()) != 0 {
			t.Fatalf("reset %d left state behind: index=%d answers=%v", i, e.Index(), e.Answers())
		}
		vector, err := e.CalculateUserVector()
		if err != nil {
			t.Fatalf("calculate: %v", err)
		}
		if !vector.IsZero() {
			t.Fatalf("expected zero vector after reset, got %v", vector)
		}
		if e.State() != StateReady {
			t.Fatalf("expected ready state after reset, got %s", e.State())
		}
	}
}

func TestInitializeCopiesQuestions(t *testing.T) {
	questions := sampleQuestions()
	e := newInitialized(t, questions)

	questions[0].Options[0].ID = "mutated"

	current, err := e.CurrentQuestion()
	if err != nil {
		t.Fatalf("current question: %v", err)
	}
	if current.Options[0].ID != "a" {
		t.Fatalf("engine state leaked to caller slice: %+v", current.Options[0])
	}

	current.Options[0].ID = "mutated-again"
	if err := e.SubmitAnswer("a"); err != nil {
		t.Fatalf("engine state leaked from returned question: %v", err)
	}
}

func TestDebugLoggingIsOptIn(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	e := New(Options{FrequencyBonus: DefaultFrequencyBonus, Logger: zap.New(core)})
	if err := e.Initialize(sampleQuestions()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := e.SubmitAnswer("a"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	entries := observed.FilterMessage("answer recorded").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 answer log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["question_id"] != "q1" {
		t.Fatalf("unexpected log context: %v", entries[0].ContextMap())
	}
}
