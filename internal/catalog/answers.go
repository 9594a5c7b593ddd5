package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Answers maps question ids to the chosen option ids.
type Answers map[string]string

type answersFile struct {
	Answers Answers `yaml:"answers"`
}

// LoadAnswers reads a scripted answer file: a mapping of question id to option
// id, optionally nested under an "answers" key.
func (l *Loader) LoadAnswers(path string) (Answers, error) {
	data, format, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if format == FormatCSV {
		return nil, fmt.Errorf("%s: answers must be yaml or json", path)
	}

	answers, err := ParseAnswers(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return answers, nil
}

// ParseAnswers decodes a YAML or JSON answer mapping.
func ParseAnswers(data []byte) (Answers, error) {
	var file answersFile
	if err := yaml.Unmarshal(data, &file); err == nil && len(file.Answers) > 0 {
		return file.Answers.trimmed(), nil
	}

	var answers Answers
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return answers.trimmed(), nil
}

func (a Answers) trimmed() Answers {
	out := make(Answers, len(a))
	for q, o := range a {
		out[strings.TrimSpace(q)] = strings.TrimSpace(o)
	}
	return out
}
