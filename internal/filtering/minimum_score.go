package filtering

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/matching"
)

type minimumScoreFilter struct {
	toggle
	minimum float64
}

// NewMinimumScore creates a filter that drops companies below a similarity threshold.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if math.IsNaN(cfg.MinimumScore) || cfg.MinimumScore < -1 || cfg.MinimumScore > 1 {
		return fmt.Errorf("minimum score must be within [-1, 1], got %v", cfg.MinimumScore)
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()
	if f.minimum <= 0 {
		return r, step(initial, r), nil
	}

	var dropped []string
	kept := make([]*matching.Result, 0, initial)
	for _, item := range r.Items {
		if item.Score < f.minimum {
			dropped = append(dropped, item.Company.ID)
			continue
		}
		kept = append(kept, item)
	}
	next := &matching.Results{Items: kept}

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding companies below minimum score",
			zap.Float64("minimum_score", f.minimum),
			zap.Strings("excluded_companies", dropped),
			zap.Int("companies_left", next.Len()),
		)
	}

	return next, step(initial, next), nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": fmt.Sprintf("%.2f", f.minimum)},
	}
}
