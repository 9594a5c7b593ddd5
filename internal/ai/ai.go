// Package ai defines the optional explanation providers that turn a ranked
// match into prose. The matching core never depends on them.
package ai

import (
	"context"

	"github.com/spigell/company-matcher/internal/category"
	"github.com/spigell/company-matcher/internal/matching"
)

// Request describes one match to explain.
type Request struct {
	User               category.Vector
	Company            matching.CompanyProfile
	Score              float64
	Reason             string
	MatchingCategories []category.Category
}

// NewRequest builds a request from a ranked result.
func NewRequest(user category.Vector, result *matching.Result) Request {
	return Request{
		User:               user,
		Company:            result.Company,
		Score:              result.Score,
		Reason:             result.Reason,
		MatchingCategories: append([]category.Category(nil), result.MatchingCategories...),
	}
}

// Explanation is the prose produced for a match.
type Explanation struct {
	Text         string   `json:"text"`
	Strengths    []string `json:"strengths,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
	// Source names the provider, or "fallback" for the deterministic reason.
	Source string `json:"source"`
	// Error keeps the provider failure that caused a fallback.
	Error string `json:"error,omitempty"`
	Raw   string `json:"-"`
}

// Provider generates explanations.
type Provider interface {
	Name() string
	Explain(ctx context.Context, req Request) (*Explanation, error)
}
