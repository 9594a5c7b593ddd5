package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse signals a provider answer without usable text.
var ErrEmptyResponse = errors.New("empty explanation")

// ParseExplanation reads a provider answer. JSON answers, optionally wrapped in
// a markdown fence, are decoded leniently. Anything else is read as plain
// text: the first paragraph is the explanation, the next two list strengths
// and improvements.
func ParseExplanation(raw string) (*Explanation, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		if strings.HasPrefix(cleaned, "{") {
			return nil, fmt.Errorf("parse explanation: %w", err)
		}
		return parseSections(cleaned)
	}

	text := coerceString(data["explanation"])
	if text == "" {
		text = coerceString(data["text"])
	}
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return &Explanation{
		Text:         text,
		Strengths:    coerceStrings(data["strengths"]),
		Improvements: coerceStrings(data["improvements"]),
		Raw:          raw,
	}, nil
}

func parseSections(text string) (*Explanation, error) {
	sections := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	exp := &Explanation{Text: strings.TrimSpace(sections[0]), Raw: text}
	if exp.Text == "" {
		return nil, ErrEmptyResponse
	}
	if len(sections) > 1 {
		exp.Strengths = lines(sections[1])
	}
	if len(sections) > 2 {
		exp.Improvements = lines(sections[2])
	}
	return exp, nil
}

func lines(section string) []string {
	var out []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return lines(val)
	default:
		return nil
	}
}
