package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/filtering"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the questionnaire, the company catalog and the result filters",
	Run: func(_ *cobra.Command, _ []string) {
		validate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validate() {
	a := newApplication(context.Background())
	defer a.finish()

	questions, companies, err := a.loadCatalog()
	if err != nil {
		a.logger.Fatal("loading catalog", zap.Error(err))
	}

	s, err := a.newSession(questions, companies)
	if err != nil {
		a.logger.Fatal("starting a session", zap.Error(err))
	}

	cfg := a.filterConfig()
	for _, step := range filtering.DefaultSteps() {
		if err := step.Validate(cfg); err != nil {
			a.logger.Fatal("invalid filter configuration", zap.String("filter", step.Name()), zap.Error(err))
		}
	}

	a.logger.Info("catalog is valid",
		zap.Int("questions", s.Assessment.Total()),
		zap.Int("companies", len(s.Matching.Companies())),
		zap.Bool("explanations", a.enricher.Enabled()),
	)
}
