// Package matching ranks a company catalog against a user preference vector.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/category"
)

// GenericReason is returned when no strong preference lines up with the company.
const GenericReason = "Your overall preference profile shows a high affinity with this company."

// Config holds the reason and closeness thresholds.
type Config struct {
	// StrongPreference is the minimal user score of a strong preference.
	StrongPreference float64 `mapstructure:"strong-preference"`
	// AlignmentTolerance is the largest user/company gap still considered aligned.
	AlignmentTolerance float64 `mapstructure:"alignment-tolerance"`
	// MaxReasonCategories limits the categories named in a reason.
	MaxReasonCategories int `mapstructure:"max-reason-categories"`
	// ClosenessScale and ClosenessThreshold select matching categories:
	// 1 - |u-c|/ClosenessScale must exceed ClosenessThreshold.
	ClosenessScale     float64 `mapstructure:"closeness-scale"`
	ClosenessThreshold float64 `mapstructure:"closeness-threshold"`
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		StrongPreference:    8.5,
		AlignmentTolerance:  1.5,
		MaxReasonCategories: 2,
		ClosenessScale:      4,
		ClosenessThreshold:  0.7,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StrongPreference <= 0 {
		c.StrongPreference = d.StrongPreference
	}
	if c.AlignmentTolerance <= 0 {
		c.AlignmentTolerance = d.AlignmentTolerance
	}
	if c.MaxReasonCategories <= 0 {
		c.MaxReasonCategories = d.MaxReasonCategories
	}
	if c.ClosenessScale <= 0 {
		c.ClosenessScale = d.ClosenessScale
	}
	if c.ClosenessThreshold <= 0 {
		c.ClosenessThreshold = d.ClosenessThreshold
	}
	return c
}

// Engine ranks companies. It is not safe for concurrent use.
type Engine struct {
	cfg         Config
	companies   []CompanyProfile
	vectors     []category.Vector
	initialized bool
	logger      *zap.Logger
}

// New creates an engine. Zero config fields fall back to DefaultConfig and a
// nil logger disables logging.
func New(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg.withDefaults(), logger: logger}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Initialize loads the catalog. Score vectors of the wrong length or with
// non-finite components are coerced, never rejected.
func (e *Engine) Initialize(companies []CompanyProfile) {
	e.companies = make([]CompanyProfile, len(companies))
	e.vectors = make([]category.Vector, len(companies))

	coerced := 0
	for i, c := range companies {
		v, adjusted := category.Coerce(c.Scores)
		if adjusted {
			coerced++
			e.logger.Debug("company scores coerced",
				zap.String("company_id", c.ID),
				zap.Int("components", len(c.Scores)),
			)
		}
		e.companies[i] = c.clone()
		e.vectors[i] = v
	}
	e.initialized = true

	e.logger.Debug("matching initialized",
		zap.Int("companies", len(companies)),
		zap.Int("coerced", coerced),
	)
}

// Companies returns a copy of the loaded catalog.
func (e *Engine) Companies() []CompanyProfile {
	out := make([]CompanyProfile, len(e.companies))
	for i, c := range e.companies {
		out[i] = c.clone()
	}
	return out
}

// FindMatchingCompanies scores every company by cosine similarity and returns
// them in descending order. Equal scores keep catalog order. Nothing is
// filtered out.
func (e *Engine) FindMatchingCompanies(user []float64) (*Results, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	u, err := userVector(user)
	if err != nil {
		return nil, err
	}

	items := make([]*Result, 0, len(e.companies))
	for i, c := range e.companies {
		v := e.vectors[i]
		items = append(items, &Result{
			Company:            c.clone(),
			Score:              category.Cosine(u, v),
			Reason:             e.reason(u, v, c),
			MatchingCategories: e.matchingCategories(u, v),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	e.logger.Debug("companies ranked", zap.Int("results", len(items)))
	return &Results{Items: items}, nil
}

// GenerateMatchReason builds the deterministic rationale for one company.
func (e *Engine) GenerateMatchReason(user []float64, company CompanyProfile) (string, error) {
	u, err := userVector(user)
	if err != nil {
		return "", err
	}
	return e.reason(u, company.Vector(), company), nil
}

// MatchingCategories returns the categories where user and company are close,
// in category order.
func (e *Engine) MatchingCategories(user []float64, company CompanyProfile) ([]category.Category, error) {
	u, err := userVector(user)
	if err != nil {
		return nil, err
	}
	return e.matchingCategories(u, company.Vector()), nil
}

func userVector(user []float64) (category.Vector, error) {
	u, ok := category.FromSlice(user)
	if !ok {
		return u, &InvalidVectorError{Got: len(user)}
	}
	if !u.Finite() {
		return u, &InvalidVectorError{Got: len(user), NonFinite: true}
	}
	return u, nil
}

func (e *Engine) aligned(u, c category.Vector) []category.Category {
	var out []category.Category
	for _, cat := range category.All() {
		if u[cat] < e.cfg.StrongPreference {
			continue
		}
		if math.Abs(u[cat]-c[cat]) <= e.cfg.AlignmentTolerance {
			out = append(out, cat)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return u[out[i]] > u[out[j]]
	})
	return out
}

func (e *Engine) reason(u, c category.Vector, company CompanyProfile) string {
	aligned := e.aligned(u, c)
	if len(aligned) == 0 {
		return GenericReason
	}
	if len(aligned) > e.cfg.MaxReasonCategories {
		aligned = aligned[:e.cfg.MaxReasonCategories]
	}

	parts := make([]string, 0, len(aligned))
	for _, cat := range aligned {
		parts = append(parts, describe(cat, company.TagsFor(cat)))
	}

	return fmt.Sprintf("Strong match on what matters most to you: %s.", joinParts(parts))
}

func describe(cat category.Category, tags []string) string {
	var clean []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return cat.Label()
	}
	return fmt.Sprintf("%s (%s)", cat.Label(), strings.Join(clean, ", "))
}

func joinParts(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

func (e *Engine) matchingCategories(u, c category.Vector) []category.Category {
	var out []category.Category
	for _, cat := range category.All() {
		closeness := 1 - math.Abs(u[cat]-c[cat])/e.cfg.ClosenessScale
		if closeness > e.cfg.ClosenessThreshold {
			out = append(out, cat)
		}
	}
	return out
}
