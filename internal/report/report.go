// Package report renders a finished session for the terminal and for JSON files.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spigell/company-matcher/internal/ai"
	"github.com/spigell/company-matcher/internal/category"
	"github.com/spigell/company-matcher/internal/matching"
)

// Report is the serializable outcome of a session.
type Report struct {
	SessionID   string             `json:"session_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	UserVector  map[string]float64 `json:"user_vector"`
	Matches     []*Match           `json:"matches"`
}

// Match is one ranked company with its explanation.
type Match struct {
	Rank               int                 `json:"rank"`
	CompanyID          string              `json:"company_id"`
	Name               string              `json:"name"`
	Industry           string              `json:"industry,omitempty"`
	Website            string              `json:"website,omitempty"`
	Score              float64             `json:"score"`
	Reason             string              `json:"reason"`
	MatchingCategories []string            `json:"matching_categories,omitempty"`
	Tags               map[string][]string `json:"tags,omitempty"`
	Explanation        *ai.Explanation     `json:"explanation,omitempty"`
}

// New builds a report. explanations, when given, are aligned with results.Items.
func New(sessionID string, user category.Vector, results *matching.Results, explanations []*ai.Explanation) *Report {
	r := &Report{
		SessionID:   sessionID,
		GeneratedAt: time.Now().UTC(),
		UserVector:  user.Map(),
		Matches:     make([]*Match, 0, results.Len()),
	}

	if results == nil {
		return r
	}
	for i, item := range results.Items {
		m := &Match{
			Rank:               i + 1,
			CompanyID:          item.Company.ID,
			Name:               item.Company.Name,
			Industry:           item.Company.Industry,
			Website:            item.Company.Website,
			Score:              item.Score,
			Reason:             item.Reason,
			MatchingCategories: item.MatchingCategoryIDs(),
			Tags:               item.Company.TagMap(),
		}
		if i < len(explanations) {
			m.Explanation = explanations[i]
		}
		r.Matches = append(r.Matches, m)
	}
	return r
}

// ByIndustry groups matches by industry for display. Matches keep their rank
// order inside each group.
func (r *Report) ByIndustry() map[string][]map[string]string {
	grouped := make(map[string][]map[string]string)
	for _, m := range r.Matches {
		key := m.Industry
		if key == "" {
			key = "Other"
		}
		entry := map[string]string{
			"rank":   fmt.Sprintf("%d", m.Rank),
			"name":   fmt.Sprintf("%s (%s)", m.Name, m.CompanyID),
			"score":  fmt.Sprintf("%.1f%%", m.Score*100),
			"reason": m.Reason,
		}
		if m.Website != "" {
			entry["website"] = m.Website
		}
		if m.Explanation != nil && m.Explanation.Source != "" && m.Explanation.Text != m.Reason {
			entry["explanation"] = m.Explanation.Text
		}
		grouped[key] = append(grouped[key], entry)
	}
	return grouped
}

// TopCategories returns the n strongest user categories, strongest first.
func (r *Report) TopCategories(n int) []string {
	ids := make([]string, 0, len(r.UserVector))
	for id := range r.UserVector {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.UserVector[ids[i]], r.UserVector[ids[j]]
		if a != b {
			return a > b
		}
		ci, _ := category.Parse(ids[i])
		cj, _ := category.Parse(ids[j])
		return ci < cj
	})
	if n > 0 && n < len(ids) {
		ids = ids[:n]
	}
	return ids
}

// DumpToTmpFile writes the report into a new temporary file and returns its path.
func (r *Report) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "company_matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := r.encode(file); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ToFile writes the report to path, replacing its content.
func (r *Report) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	return r.encode(file)
}

func (r *Report) encode(file *os.File) error {
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
