package catalog

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/company-matcher/internal/assessment"
	"github.com/spigell/company-matcher/internal/category"
)

type questionFile struct {
	Questions []questionRecord `yaml:"questions"`
}

type questionRecord struct {
	ID      string         `yaml:"id"`
	Prompt  string         `yaml:"prompt"`
	Text    string         `yaml:"text"`
	Options []optionRecord `yaml:"options"`
}

type optionRecord struct {
	ID      string         `yaml:"id"`
	Text    string         `yaml:"text"`
	Weights map[string]any `yaml:"weights"`
}

// LoadQuestions reads a questionnaire file. The result is validated the same
// way assessment.Engine.Initialize validates it.
func (l *Loader) LoadQuestions(path string) ([]assessment.Question, error) {
	data, format, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if format == FormatCSV {
		return nil, &assessment.DataError{Reason: fmt.Sprintf("%s: questionnaires must be yaml or json", path)}
	}

	questions, err := ParseQuestions(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Debug("questions loaded", zap.String("path", path), zap.Int("questions", len(questions)))
	return questions, nil
}

// ParseQuestions decodes a YAML or JSON questionnaire. The document is either
// a list of questions or a mapping with a "questions" key. Weights are keyed
// by category identifier; missing categories weigh 0.
func ParseQuestions(data []byte) ([]assessment.Question, error) {
	records, err := decodeQuestionRecords(data)
	if err != nil {
		return nil, err
	}

	questions := make([]assessment.Question, 0, len(records))
	for _, r := range records {
		q := assessment.Question{ID: r.ID, Prompt: r.Prompt}
		if q.Prompt == "" {
			q.Prompt = r.Text
		}
		for _, o := range r.Options {
			weights, err := parseWeights(o.Weights)
			if err != nil {
				var dataErr *assessment.DataError
				if errors.As(err, &dataErr) {
					dataErr.QuestionID, dataErr.OptionID = r.ID, o.ID
				}
				return nil, err
			}
			q.Options = append(q.Options, assessment.Option{ID: o.ID, Text: o.Text, Weights: weights})
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, &assessment.DataError{Reason: "no questions provided"}
	}

	// Reuse the engine rules so files are rejected before a session starts.
	if err := assessment.New(assessment.DefaultOptions()).Initialize(questions); err != nil {
		return nil, err
	}

	return questions, nil
}

func decodeQuestionRecords(data []byte) ([]questionRecord, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &assessment.DataError{Reason: fmt.Sprintf("decode questions: %v", err)}
	}
	if len(root.Content) == 0 {
		return nil, &assessment.DataError{Reason: "no questions provided"}
	}

	doc := root.Content[0]
	if err := validateQuestionsShape(doc); err != nil {
		return nil, err
	}

	if doc.Kind == yaml.SequenceNode {
		var records []questionRecord
		if err := doc.Decode(&records); err != nil {
			return nil, &assessment.DataError{Reason: fmt.Sprintf("decode questions: %v", err)}
		}
		return records, nil
	}

	var file questionFile
	if err := doc.Decode(&file); err != nil {
		return nil, &assessment.DataError{Reason: fmt.Sprintf("decode questions: %v", err)}
	}
	return file.Questions, nil
}

func parseWeights(raw map[string]any) (category.Vector, error) {
	var weights category.Vector
	for key, value := range raw {
		c, err := category.Parse(key)
		if err != nil {
			return weights, &assessment.DataError{Reason: err.Error()}
		}
		w, err := cast.ToFloat64E(value)
		if err != nil {
			return weights, &assessment.DataError{Reason: fmt.Sprintf("weight for %s is not a number: %v", c, value)}
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return weights, &assessment.DataError{Reason: fmt.Sprintf("weight for %s must be a non-negative number, got %v", c, w)}
		}
		weights[c] = w
	}
	return weights, nil
}
