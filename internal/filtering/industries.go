package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/matching"
)

type industriesFilter struct {
	toggle
	industries map[string]struct{}
	names      []string
}

// NewIndustries creates a filter that keeps only companies of the configured
// industries. Without configured industries every company is kept.
func NewIndustries() Filter {
	return &industriesFilter{}
}

func (f *industriesFilter) Name() string { return "industries" }

func (f *industriesFilter) Validate(cfg *Config) error {
	f.industries = nil
	f.names = nil
	if cfg == nil {
		return nil
	}
	for _, name := range cfg.Industries {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if f.industries == nil {
			f.industries = make(map[string]struct{})
		}
		f.industries[strings.ToLower(name)] = struct{}{}
		f.names = append(f.names, name)
	}
	return nil
}

func (f *industriesFilter) Apply(_ context.Context, deps Deps, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()
	if len(f.industries) == 0 {
		return r, step(initial, r), nil
	}

	kept := make([]*matching.Result, 0, initial)
	for _, item := range r.Items {
		if _, ok := f.industries[strings.ToLower(strings.TrimSpace(item.Company.Industry))]; ok {
			kept = append(kept, item)
		}
	}
	next := &matching.Results{Items: kept}

	if deps.Logger != nil && next.Len() < initial {
		deps.Logger.Info("keeping companies of selected industries",
			zap.Strings("industries", f.names),
			zap.Int("companies_left", next.Len()),
		)
	}

	return next, step(initial, next), nil
}

func (f *industriesFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["industries"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
