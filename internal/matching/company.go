package matching

import (
	"slices"

	"github.com/spigell/company-matcher/internal/category"
)

// CompanyProfile is a catalog entry. Scores are expected to hold one value in
// [0, 10] per category; the engine coerces anything else.
type CompanyProfile struct {
	ID          string                         `json:"id" yaml:"id"`
	Name        string                         `json:"name" yaml:"name"`
	Industry    string                         `json:"industry,omitempty" yaml:"industry,omitempty"`
	Description string                         `json:"description,omitempty" yaml:"description,omitempty"`
	Website     string                         `json:"website,omitempty" yaml:"website,omitempty"`
	Scores      []float64                      `json:"scores" yaml:"scores"`
	Tags        map[category.Category][]string `json:"-" yaml:"-"`
}

// Vector returns the coerced score vector.
func (c CompanyProfile) Vector() category.Vector {
	v, _ := category.Coerce(c.Scores)
	return v
}

// TagsFor returns the descriptive tags of a category.
func (c CompanyProfile) TagsFor(cat category.Category) []string {
	return c.Tags[cat]
}

// TagMap returns the tags keyed by category identifier.
func (c CompanyProfile) TagMap() map[string][]string {
	if len(c.Tags) == 0 {
		return nil
	}
	out := make(map[string][]string, len(c.Tags))
	for cat, tags := range c.Tags {
		out[cat.ID()] = slices.Clone(tags)
	}
	return out
}

func (c CompanyProfile) clone() CompanyProfile {
	v, _ := category.Coerce(c.Scores)
	c.Scores = v.Slice()
	if c.Tags != nil {
		tags := make(map[category.Category][]string, len(c.Tags))
		for cat, t := range c.Tags {
			tags[cat] = slices.Clone(t)
		}
		c.Tags = tags
	}
	return c
}

// Result is one ranked company.
type Result struct {
	Company            CompanyProfile      `json:"company"`
	Score              float64             `json:"score"`
	Reason             string              `json:"reason"`
	MatchingCategories []category.Category `json:"-"`
}

// MatchingCategoryIDs returns the identifiers of the matching categories.
func (r Result) MatchingCategoryIDs() []string {
	ids := make([]string, 0, len(r.MatchingCategories))
	for _, c := range r.MatchingCategories {
		ids = append(ids, c.ID())
	}
	return ids
}

// Results is a ranking in descending score order.
type Results struct {
	Items []*Result
}

// Len returns the number of results.
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

// FindByID returns the result for a company id.
func (r *Results) FindByID(id string) (*Result, bool) {
	if r == nil {
		return nil, false
	}
	for _, item := range r.Items {
		if item.Company.ID == id {
			return item, true
		}
	}
	return nil, false
}

// IDs returns the company ids in ranking order.
func (r *Results) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.Company.ID)
	}
	return ids
}

// Exclude returns a new ranking without the given company ids, keeping order.
func (r *Results) Exclude(ids []string) *Results {
	if r == nil {
		return &Results{}
	}
	if len(ids) == 0 {
		return &Results{Items: slices.Clone(r.Items)}
	}
	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}
	kept := make([]*Result, 0, len(r.Items))
	for _, item := range r.Items {
		if _, ok := skip[item.Company.ID]; ok {
			continue
		}
		kept = append(kept, item)
	}
	return &Results{Items: kept}
}

// Top returns at most n leading results. n <= 0 keeps everything.
func (r *Results) Top(n int) *Results {
	if r == nil {
		return &Results{}
	}
	if n <= 0 || n >= len(r.Items) {
		return &Results{Items: slices.Clone(r.Items)}
	}
	return &Results{Items: slices.Clone(r.Items[:n])}
}
