package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/matching"
)

// ExcludedCompanies is the content of an exclude file.
type ExcludedCompanies struct {
	Items []*ExcludedCompany
}

// ExcludedCompany is a company the user does not want to see again.
type ExcludedCompany struct {
	ID         string
	Name       string
	Website    string
	ExcludedAt time.Time
}

// ToExcluded converts a ranking into exclude file entries.
func ToExcluded(r *matching.Results) *ExcludedCompanies {
	excluded := &ExcludedCompanies{}
	if r == nil {
		return excluded
	}
	now := time.Now().UTC()
	for _, item := range r.Items {
		excluded.Items = append(excluded.Items, &ExcludedCompany{
			ID:         item.Company.ID,
			Name:       item.Company.Name,
			Website:    item.Company.Website,
			ExcludedAt: now,
		})
	}
	return excluded
}

// ReadExcludedFile loads an exclude file. A missing or empty file holds no companies.
func ReadExcludedFile(path string) (*ExcludedCompanies, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ExcludedCompanies{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return &ExcludedCompanies{}, nil
	}

	var excluded ExcludedCompanies
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decode exclude file %s: %w", path, err)
	}
	return &excluded, nil
}

// Append adds entries whose id is not present yet.
func (e *ExcludedCompanies) Append(s *ExcludedCompanies) {
	seen := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		seen[item.ID] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

// IDs returns the excluded company ids.
func (e *ExcludedCompanies) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// ToFile overwrites path with the entries.
func (e *ExcludedCompanies) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes companies contained in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()
	if f.path == "" {
		return r, step(initial, r), nil
	}

	excluded, err := ReadExcludedFile(f.path)
	if err != nil {
		return r, Step{}, fmt.Errorf("getting excluded companies from file: %w", err)
	}

	next := r.Exclude(excluded.IDs())
	if deps.Logger != nil && next.Len() < initial {
		deps.Logger.Info("excluding companies based on exclude file",
			zap.String("path", f.path),
			zap.Int("companies_left", next.Len()),
		)
	}

	return next, step(initial, next), nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
