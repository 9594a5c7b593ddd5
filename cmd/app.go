package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/ai"
	"github.com/spigell/company-matcher/internal/ai/gemini"
	"github.com/spigell/company-matcher/internal/ai/openai"
	"github.com/spigell/company-matcher/internal/assessment"
	"github.com/spigell/company-matcher/internal/catalog"
	"github.com/spigell/company-matcher/internal/explain"
	"github.com/spigell/company-matcher/internal/filtering"
	"github.com/spigell/company-matcher/internal/logger"
	"github.com/spigell/company-matcher/internal/matching"
	"github.com/spigell/company-matcher/internal/metrics"
	"github.com/spigell/company-matcher/internal/report"
	"github.com/spigell/company-matcher/internal/secrets"
	"github.com/spigell/company-matcher/internal/session"
)

// application carries the wiring shared by the commands.
type application struct {
	config   *Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	loader   *catalog.Loader
	enricher *explain.Enricher
}

func newApplication(ctx context.Context) *application {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is empty")
	}

	logger.Info("starting the company-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	a := &application{
		config:  config,
		logger:  logger,
		metrics: metrics.New(),
		loader:  catalog.New(logger.Named("catalog")),
	}
	a.enricher = explain.New(a.newProvider(ctx), a.explainConfig(), a.metrics, logger.Named("explain"))

	return a
}

func (a *application) loadCatalog() ([]assessment.Question, []matching.CompanyProfile, error) {
	questions, err := a.loader.LoadQuestions(a.config.Questions)
	if err != nil {
		return nil, nil, fmt.Errorf("loading questions: %w", err)
	}

	companies, err := a.loader.LoadCompanies(a.config.Companies)
	if err != nil {
		return nil, nil, fmt.Errorf("loading companies: %w", err)
	}

	a.logger.Info("catalog loaded",
		zap.String("questions_file", a.config.Questions),
		zap.Int("questions", len(questions)),
		zap.String("companies_file", a.config.Companies),
		zap.Int("companies", len(companies)),
	)

	return questions, companies, nil
}

func (a *application) newSession(questions []assessment.Question, companies []matching.CompanyProfile) (*session.Session, error) {
	opts := assessment.DefaultOptions()
	if a.config.Assessment != nil && a.config.Assessment.FrequencyBonus > 0 {
		opts.FrequencyBonus = a.config.Assessment.FrequencyBonus
	}
	opts.Logger = a.logger.Named("assessment")

	cfg := matching.DefaultConfig()
	if a.config.Matching != nil {
		cfg = *a.config.Matching
	}

	return session.New(session.Config{
		Questions:  questions,
		Companies:  companies,
		Assessment: opts,
		Matching:   cfg,
		Metrics:    a.metrics,
		Logger:     a.logger,
	})
}

func (a *application) explainConfig() explain.Config {
	if a.config.AI == nil {
		return explain.Config{}
	}
	return explain.Config{
		Timeout:       a.config.AI.Timeout,
		RatePerSecond: a.config.AI.RatePerSecond,
		Burst:         a.config.AI.Burst,
		Concurrency:   a.config.AI.Concurrency,
		CacheTTL:      a.config.AI.CacheTTL,
	}
}

// newProvider returns nil when explanations are disabled or the provider cannot be built.
// Rankings are still produced without it.
func (a *application) newProvider(ctx context.Context) ai.Provider {
	cfg := a.config.AI
	if cfg == nil || !cfg.Enabled {
		a.logger.Info("AI explanations are disabled, using generated match reasons")
		return nil
	}

	provider, err := a.buildProvider(ctx, cfg)
	if err != nil {
		a.logger.Warn("AI provider is unavailable, using generated match reasons", zap.Error(err))
		return nil
	}

	return provider
}

func (a *application) buildProvider(ctx context.Context, cfg *AIConfig) (ai.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", gemini.ProviderName:
		gc := cfg.Gemini
		if gc == nil {
			gc = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:    "Gemini API key",
			File:    gc.APIKeyFile,
			FileEnv: "GEMINI_API_KEY_FILE",
			Env:     "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		aiLogger := logger.WithFields(a.logger.Named("gemini"), logger.CommonFields(gemini.ProviderName, gc.Model)...)
		generator, err := gemini.NewGenerator(ctx, apiKey, gc.Model, gc.MaxRetries, aiLogger)
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}

		return gemini.NewExplainer(generator, cfg.Language, gc.MaxLogLength, aiLogger), nil

	case openai.ProviderName:
		oc := cfg.OpenAI
		if oc == nil {
			oc = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:    "OpenAI API key",
			File:    oc.APIKeyFile,
			FileEnv: "OPENAI_API_KEY_FILE",
			Env:     "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}

		aiLogger := logger.WithFields(a.logger.Named("openai"), logger.CommonFields(openai.ProviderName, oc.Model)...)
		provider, err := openai.New(openai.Config{
			APIKey:       apiKey,
			BaseURL:      oc.BaseURL,
			Model:        oc.Model,
			MaxTokens:    oc.MaxTokens,
			Language:     cfg.Language,
			MaxLogLength: oc.MaxLogLength,
		}, aiLogger)
		if err != nil {
			return nil, fmt.Errorf("creating openai client: %w", err)
		}

		return provider, nil

	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}

func (a *application) filterConfig() *filtering.Config {
	cfg := &filtering.Config{ExcludeFile: a.config.ExcludeFile}
	if r := a.config.Results; r != nil {
		cfg.MinimumScore = r.MinimumScore
		cfg.Industries = r.Industries
		cfg.Top = r.Top
		if r.Exclude != nil {
			cfg.ExcludedCompanies = r.Exclude.Companies
		}
	}
	return cfg
}

// present narrows the ranking for display and attaches explanations.
func (a *application) present(ctx context.Context, s *session.Session, match *session.Match) (*matching.Results, *report.Report, error) {
	cfg := a.filterConfig()
	steps := filtering.DefaultSteps()
	if cfg.ExcludeFile == "" {
		filtering.DisableByName(steps, "exclude_file", "exclude file is not set")
	}

	for _, status := range filtering.Describe(steps) {
		a.logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	results, err := filtering.Run(ctx, cfg, filtering.Deps{Logger: a.logger.Named("filtering")}, steps, match.Results)
	if err != nil {
		return nil, nil, fmt.Errorf("filtering matches: %w", err)
	}

	explanations := a.enricher.ExplainAll(ctx, match.User, results)

	return results, report.New(s.ID, match.User, results, explanations), nil
}

func (a *application) logMatches(r *report.Report) {
	for _, m := range r.Matches {
		fields := []zap.Field{
			zap.Int("rank", m.Rank),
			zap.String("company", m.Name),
			zap.String("industry", m.Industry),
			zap.String("score", fmt.Sprintf("%.1f%%", m.Score*100)),
			zap.String("reason", m.Reason),
		}
		if m.Explanation != nil && m.Explanation.Source != explain.FallbackSource {
			fields = append(fields, zap.String("explanation", m.Explanation.Text))
		}
		a.logger.Info("match", fields...)
	}
}

func (a *application) appendToExcludeFile(results *matching.Results) error {
	path := a.config.ExcludeFile
	if path == "" {
		return errors.New("exclude file is not set (use --exclude-file or exclude-file in the config)")
	}

	excluded, err := filtering.ReadExcludedFile(path)
	if err != nil {
		return err
	}
	excluded.Append(filtering.ToExcluded(results))

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	a.logger.Info("companies appended to exclude file", zap.String("file", path), zap.Int("companies", results.Len()))
	return nil
}

func (a *application) finish() {
	if a.config.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.config.MetricsFile); err != nil {
			a.logger.Warn("writing metrics", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
