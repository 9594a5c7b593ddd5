package filtering

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/company-matcher/internal/matching"
)

func ranking() *matching.Results {
	rows := []struct {
		id       string
		industry string
		score    float64
	}{
		{"a", "Software", 0.95},
		{"b", "Retail", 0.9},
		{"c", "software", 0.7},
		{"d", "Finance", 0.4},
		{"e", "Software", -0.2},
	}
	items := make([]*matching.Result, 0, len(rows))
	for _, r := range rows {
		items = append(items, &matching.Result{
			Company: matching.CompanyProfile{ID: r.id, Name: "Company " + r.id, Industry: r.industry},
			Score:   r.score,
		})
	}
	return &matching.Results{Items: items}
}

func TestRunAppliesStepsInOrder(t *testing.T) {
	excludePath := filepath.Join(t.TempDir(), "exclude.json")
	file := &ExcludedCompanies{Items: []*ExcludedCompany{{ID: "c"}}}
	if err := file.ToFile(excludePath); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	cfg := &Config{
		MinimumScore:      0.5,
		ExcludedCompanies: []string{"b"},
		ExcludeFile:       excludePath,
		Top:               5,
	}

	core, observed := observer.New(zapcore.InfoLevel)
	out, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core)}, DefaultSteps(), ranking())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := out.IDs(); !slices.Equal(got, []string{"a"}) {
		t.Fatalf("unexpected ids: %v", got)
	}

	steps := observed.FilterMessage("filter step").All()
	if len(steps) != 5 {
		t.Fatalf("expected 5 step log entries, got %d", len(steps))
	}
	first := steps[0].ContextMap()
	if first["name"] != "minimum_score" || first["initial"] != int64(5) || first["dropped"] != int64(2) || first["left"] != int64(3) {
		t.Fatalf("unexpected minimum_score step: %v", first)
	}
}

func TestRunKeepsOrderAndDisabledSteps(t *testing.T) {
	steps := DefaultSteps()
	DisableByName(steps, "minimum_score", "not needed")

	cfg := &Config{MinimumScore: 0.99, Industries: []string{"SOFTWARE"}, Top: 2}
	out, err := Run(context.Background(), cfg, Deps{}, steps, ranking())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := out.IDs(); !slices.Equal(got, []string{"a", "c"}) {
		t.Fatalf("unexpected ids: %v", got)
	}

	statuses := Describe(steps)
	if statuses[0].Enabled || statuses[0].Reason != "not needed" {
		t.Fatalf("expected disabled minimum_score status, got %+v", statuses[0])
	}
	if statuses[4].Details["top"] != "2" {
		t.Fatalf("unexpected top_n status: %+v", statuses[4])
	}
}

func TestRunValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "minimum score above 1", cfg: &Config{MinimumScore: 1.5}},
		{name: "negative top", cfg: &Config{Top: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(context.Background(), tt.cfg, Deps{}, DefaultSteps(), ranking()); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRunWithoutConfigKeepsEverything(t *testing.T) {
	out, err := Run(context.Background(), nil, Deps{}, DefaultSteps(), ranking())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 5 {
		t.Fatalf("expected every company, got %d", out.Len())
	}
}

func TestExcludedCompaniesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	excluded, err := ReadExcludedFile(path)
	if err != nil || len(excluded.Items) != 0 {
		t.Fatalf("missing file must read as empty, got %+v (%v)", excluded, err)
	}

	excluded.Append(ToExcluded(ranking().Top(2)))
	excluded.Append(ToExcluded(ranking().Top(3)))
	if got := excluded.IDs(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("append must skip duplicates, got %v", got)
	}
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	shorter := &ExcludedCompanies{Items: excluded.Items[:1]}
	if err := shorter.ToFile(path); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	read, err := ReadExcludedFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := read.IDs(); !slices.Equal(got, []string{"a"}) {
		t.Fatalf("expected truncated rewrite, got %v", got)
	}
	if read.Items[0].Name != "Company a" || read.Items[0].ExcludedAt.IsZero() {
		t.Fatalf("unexpected entry: %+v", read.Items[0])
	}

	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadExcludedFile(path); err == nil {
		t.Fatal("expected decode error")
	}
}
