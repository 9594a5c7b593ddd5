package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/matching"
)

type excludedCompaniesFilter struct {
	toggle
	companies []string
}

// NewExcludedCompanies creates a filter that removes companies listed in the config.
func NewExcludedCompanies() Filter {
	return &excludedCompaniesFilter{}
}

func (f *excludedCompaniesFilter) Name() string { return "excluded_companies" }

func (f *excludedCompaniesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg != nil {
		for _, id := range cfg.ExcludedCompanies {
			if id = strings.TrimSpace(id); id != "" {
				f.companies = append(f.companies, id)
			}
		}
	}
	return nil
}

func (f *excludedCompaniesFilter) Apply(_ context.Context, deps Deps, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()
	if len(f.companies) == 0 {
		return r, step(initial, r), nil
	}

	next := r.Exclude(f.companies)
	if deps.Logger != nil && next.Len() < initial {
		deps.Logger.Info("excluding companies from config",
			zap.Strings("excluded_companies", f.companies),
			zap.Int("companies_left", next.Len()),
		)
	}

	return next, step(initial, next), nil
}

func (f *excludedCompaniesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
