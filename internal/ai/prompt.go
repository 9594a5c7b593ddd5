package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spigell/company-matcher/internal/category"
)

//go:embed prompt.md
var systemTemplate string

const defaultLanguage = "English"

// SystemPrompt returns the instruction shared by every provider.
func SystemPrompt(language string) string {
	if language = strings.TrimSpace(language); language == "" {
		language = defaultLanguage
	}
	return strings.ReplaceAll(strings.TrimSpace(systemTemplate), "{{LANGUAGE}}", language)
}

type promptPayload struct {
	Preferences        map[string]float64 `json:"seeker_preferences"`
	Company            companyPayload     `json:"company"`
	MatchingCategories []string           `json:"matching_categories"`
	Similarity         float64            `json:"similarity"`
	BaselineReason     string             `json:"baseline_reason"`
}

type companyPayload struct {
	Name        string              `json:"name"`
	Industry    string              `json:"industry,omitempty"`
	Description string              `json:"description,omitempty"`
	Scores      map[string]float64  `json:"scores"`
	Tags        map[string][]string `json:"tags,omitempty"`
}

// BuildMessage renders the request as the user message sent to a provider.
func BuildMessage(req Request) (string, error) {
	payload := promptPayload{
		Preferences: labelled(req.User),
		Company: companyPayload{
			Name:        req.Company.Name,
			Industry:    req.Company.Industry,
			Description: req.Company.Description,
			Scores:      labelled(req.Company.Vector()),
			Tags:        labelledTags(req.Company.Tags),
		},
		MatchingCategories: make([]string, 0, len(req.MatchingCategories)),
		Similarity:         req.Score,
		BaselineReason:     req.Reason,
	}
	for _, c := range req.MatchingCategories {
		payload.MatchingCategories = append(payload.MatchingCategories, c.Label())
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal match payload: %w", err)
	}

	return "Match:\n" + string(data) + "\n\nJSON Response:", nil
}

func labelled(v category.Vector) map[string]float64 {
	out := make(map[string]float64, category.Count)
	for _, c := range category.All() {
		out[c.Label()] = v.Get(c)
	}
	return out
}

func labelledTags(tags map[category.Category][]string) map[string][]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string][]string, len(tags))
	for c, t := range tags {
		if len(t) > 0 {
			out[c.Label()] = t
		}
	}
	return out
}
