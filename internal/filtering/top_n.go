package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/company-matcher/internal/matching"
)

type topNFilter struct {
	toggle
	top int
}

// NewTopN creates a filter that keeps the leading companies only.
func NewTopN() Filter {
	return &topNFilter{}
}

func (f *topNFilter) Name() string { return "top_n" }

func (f *topNFilter) Validate(cfg *Config) error {
	f.top = 0
	if cfg == nil {
		return nil
	}
	if cfg.Top < 0 {
		return fmt.Errorf("top must not be negative, got %d", cfg.Top)
	}
	f.top = cfg.Top
	return nil
}

func (f *topNFilter) Apply(_ context.Context, _ Deps, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()
	next := r.Top(f.top)
	return next, step(initial, next), nil
}

func (f *topNFilter) Status() Status {
	details := map[string]string{"top": "all"}
	if f.top > 0 {
		details["top"] = strconv.Itoa(f.top)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
