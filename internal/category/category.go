// Package category defines the fixed set of preference categories and the
// fixed-length vectors aligned to them.
package category

import (
	"fmt"
	"strings"
)

// Count is the number of preference categories.
const Count = 10

// Category identifies one preference dimension. Its value is the stable index
// of the dimension inside every Vector.
type Category int

const (
	WorkStyle Category = iota
	Organization
	Growth
	Values
	Relationships
	CustomerContact
	BusinessStyle
	Evaluation
	Diversity
	Stability
)

var ids = [Count]string{
	"work_style",
	"organization",
	"growth",
	"values",
	"relationships",
	"customer_contact",
	"business_style",
	"evaluation",
	"diversity",
	"stability",
}

var labels = [Count]string{
	"Work style & autonomy",
	"Organizational culture",
	"Growth & challenge",
	"Values alignment",
	"Relationships",
	"Customer contact",
	"Business style",
	"Evaluation & reward",
	"Diversity & authenticity",
	"Stability & change",
}

// lookup maps a normalized identifier to its category.
var lookup = func() map[string]Category {
	m := make(map[string]Category, Count)
	for i, id := range ids {
		m[normalize(id)] = Category(i)
	}
	return m
}()

// All returns the categories in index order.
func All() []Category {
	all := make([]Category, Count)
	for i := range all {
		all[i] = Category(i)
	}
	return all
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < Count
}

// Index returns the position of c inside a Vector.
func (c Category) Index() int { return int(c) }

// ID returns the snake_case identifier used in data files and config.
func (c Category) ID() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return ids[c]
}

// Label returns the human readable name of the category.
func (c Category) Label() string {
	if !c.Valid() {
		return c.ID()
	}
	return labels[c]
}

func (c Category) String() string { return c.ID() }

// Parse resolves an identifier written in snake_case, kebab-case or camelCase.
func Parse(s string) (Category, error) {
	if c, ok := lookup[normalize(s)]; ok {
		return c, nil
	}
	return -1, fmt.Errorf("unknown category %q", s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}
