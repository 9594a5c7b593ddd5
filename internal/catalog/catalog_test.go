package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/company-matcher/internal/assessment"
	"github.com/spigell/company-matcher/internal/category"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const questionsYAML = `
questions:
  - id: q1
    prompt: What matters most?
    options:
      - id: a
        text: Purpose
        weights:
          values: 5
      - id: b
        text: Learning
        weights:
          growth: 3
          values: "1"
  - id: q2
    prompt: Preferred pace?
    options:
      - id: calm
        weights: {Stability: 4, work-style: 1.5}
      - id: fast
        weights: {}
`

func TestLoadQuestions(t *testing.T) {
	path := writeFile(t, "questions.yaml", questionsYAML)

	questions, err := New(nil).LoadQuestions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	b := questions[0].Options[1].Weights
	if b.Get(category.Growth) != 3 || b.Get(category.Values) != 1 || b.Get(category.Stability) != 0 {
		t.Fatalf("unexpected weights for q1/b: %v", b)
	}
	calm := questions[1].Options[0].Weights
	if calm.Get(category.Stability) != 4 || calm.Get(category.WorkStyle) != 1.5 {
		t.Fatalf("unexpected weights for q2/calm: %v", calm)
	}
	if !questions[1].Options[1].Weights.IsZero() {
		t.Fatal("expected missing weights to be 0")
	}
}

func TestLoadQuestionsJSONList(t *testing.T) {
	path := writeFile(t, "questions.json", `[{"id": "q1", "text": "Prompt", "options": [{"id": "a", "weights": {"growth": 2}}]}]`)

	questions, err := New(nil).LoadQuestions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if questions[0].Prompt != "Prompt" || questions[0].Options[0].Weights.Get(category.Growth) != 2 {
		t.Fatalf("unexpected question: %+v", questions[0])
	}
}

func TestParseQuestionsRejectsBadData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       string
		questionID string
	}{
		{name: "empty document", data: ``},
		{name: "no questions", data: `questions: []`},
		{name: "unknown category", data: `[{id: q1, options: [{id: a, weights: {salary: 3}}]}]`, questionID: "q1"},
		{name: "non numeric weight", data: `[{id: q1, options: [{id: a, weights: {growth: lots}}]}]`, questionID: "q1"},
		{name: "negative weight", data: `[{id: q1, options: [{id: a, weights: {growth: -2}}]}]`, questionID: "q1"},
		{name: "no options", data: `[{id: q1, options: []}]`, questionID: "q1"},
		{name: "broken yaml", data: `questions: [`},
		{name: "options is not a list", data: `[{id: q1, options: {id: a}}]`},
		{name: "question without id", data: `questions: [{prompt: Why?, options: [{id: a}]}]`},
		{name: "scalar document", data: `just text`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseQuestions([]byte(tt.data))
			if !errors.Is(err, assessment.ErrData) {
				t.Fatalf("expected ErrData, got %v", err)
			}
			var dataErr *assessment.DataError
			if !errors.As(err, &dataErr) {
				t.Fatalf("expected *DataError, got %T", err)
			}
			if dataErr.QuestionID != tt.questionID {
				t.Fatalf("expected question %q in error, got %+v", tt.questionID, dataErr)
			}
		})
	}
}

const companiesYAML = `
companies:
  - id: acme
    name: Acme
    industry: Software
    scores: {growth: 9, values: "8.5", diversity: high}
    tags:
      growth: [mentorship, " conference budget "]
      values: "social impact, open source"
      salary: [ignored]
  - name: Unnamed
    scores: [1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11]
  - id: 42
    scores: {unknown: 5}
`

func TestParseCompanies(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	companies, err := New(zap.New(core)).ParseCompanies([]byte(companiesYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(companies) != 3 {
		t.Fatalf("expected 3 companies, got %d", len(companies))
	}

	acme := companies[0]
	if acme.Industry != "Software" || len(acme.Scores) != category.Count {
		t.Fatalf("unexpected company: %+v", acme)
	}
	if acme.Scores[category.Growth] != 9 || acme.Scores[category.Values] != 8.5 || acme.Scores[category.Diversity] != 0 {
		t.Fatalf("unexpected scores: %v", acme.Scores)
	}
	if got := acme.Tags[category.Growth]; len(got) != 2 || got[1] != "conference budget" {
		t.Fatalf("unexpected growth tags: %v", got)
	}
	if got := acme.Tags[category.Values]; len(got) != 2 || got[0] != "social impact" {
		t.Fatalf("unexpected values tags: %v", got)
	}

	unnamed := companies[1]
	if unnamed.ID != "row-2" || unnamed.Scores[9] != 10 || len(unnamed.Scores) != category.Count {
		t.Fatalf("unexpected positional company: %+v", unnamed)
	}

	if companies[2].ID != "42" {
		t.Fatalf("expected numeric id to be kept as string, got %q", companies[2].ID)
	}

	for _, msg := range []string{
		"invalid company score replaced with 0",
		"unknown tag category ignored",
		"extra company scores dropped",
		"unknown score category ignored",
	} {
		if observed.FilterMessage(msg).Len() == 0 {
			t.Fatalf("expected warning %q", msg)
		}
	}
}

func TestParseCompaniesList(t *testing.T) {
	companies, err := New(nil).ParseCompanies([]byte(`[{"id": "a", "scores": [10]}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(companies) != 1 || companies[0].Scores[0] != 10 {
		t.Fatalf("unexpected companies: %+v", companies)
	}

	if _, err := New(nil).ParseCompanies([]byte(`companies: 5`)); err == nil {
		t.Fatal("expected error for a scalar companies key")
	}
}

const companiesCSV = `id,name,industry,growth,values,stability,growth_tags,values_tags,notes
acme,Acme,Software,9,8.5,,"mentorship, conference budget",social impact,ignored
,Beta,Retail,bad,3,7,,,
`

func TestParseCompaniesCSV(t *testing.T) {
	companies, err := New(nil).ParseCompaniesCSV(strings.NewReader(companiesCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(companies))
	}

	acme := companies[0]
	if acme.Name != "Acme" || acme.Scores[category.Growth] != 9 || acme.Scores[category.Values] != 8.5 || acme.Scores[category.Stability] != 0 {
		t.Fatalf("unexpected acme: %+v", acme)
	}
	if got := acme.Tags[category.Growth]; len(got) != 2 || got[0] != "mentorship" {
		t.Fatalf("unexpected tags: %v", acme.Tags)
	}

	beta := companies[1]
	if beta.ID != "row-2" || beta.Scores[category.Growth] != 0 || beta.Scores[category.Stability] != 7 {
		t.Fatalf("unexpected beta: %+v", beta)
	}
	if len(beta.Tags) != 0 {
		t.Fatalf("expected no tags, got %v", beta.Tags)
	}
}

func TestParseCompaniesCSVPositionalColumns(t *testing.T) {
	data := "id,score1,score3,score10\nx,1,3,10\n"
	companies, err := New(nil).ParseCompaniesCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	scores := companies[0].Scores
	if scores[0] != 1 || scores[2] != 3 || scores[9] != 10 {
		t.Fatalf("unexpected scores: %v", scores)
	}
}

func TestLoadCompaniesByExtension(t *testing.T) {
	loader := New(nil)

	csvPath := writeFile(t, "companies.csv", companiesCSV)
	if companies, err := loader.LoadCompanies(csvPath); err != nil || len(companies) != 2 {
		t.Fatalf("csv: %v (%d companies)", err, len(companies))
	}

	yamlPath := writeFile(t, "companies.yml", companiesYAML)
	if companies, err := loader.LoadCompanies(yamlPath); err != nil || len(companies) != 3 {
		t.Fatalf("yaml: %v (%d companies)", err, len(companies))
	}

	if _, err := loader.LoadCompanies(writeFile(t, "companies.txt", "")); err == nil {
		t.Fatal("expected unsupported extension error")
	}
	if _, err := loader.LoadCompanies(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestParseAnswers(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "nested", data: "answers:\n  q1: a\n  q2: ' calm '\n"},
		{name: "flat", data: `{"q1": "a", "q2": "calm"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers, err := ParseAnswers([]byte(tt.data))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if answers["q1"] != "a" || answers["q2"] != "calm" {
				t.Fatalf("unexpected answers: %v", answers)
			}
		})
	}
}
