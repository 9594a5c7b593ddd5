// Package explain decorates ranked matches with provider explanations and
// falls back to the deterministic reason whenever the provider is missing,
// slow or failing.
package explain

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/spigell/company-matcher/internal/ai"
	"github.com/spigell/company-matcher/internal/category"
	"github.com/spigell/company-matcher/internal/matching"
	"github.com/spigell/company-matcher/internal/metrics"
)

// FallbackSource marks explanations built from the deterministic reason.
const FallbackSource = "fallback"

const (
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 2
	defaultCacheTTL    = time.Hour
)

// Config tunes the enricher.
type Config struct {
	Timeout time.Duration `mapstructure:"timeout"`
	// RatePerSecond limits provider calls. Zero disables the limit.
	RatePerSecond float64       `mapstructure:"rate-per-second"`
	Burst         int           `mapstructure:"burst"`
	Concurrency   int           `mapstructure:"concurrency"`
	CacheTTL      time.Duration `mapstructure:"cache-ttl"`
}

// Enricher wraps an optional provider. It is safe for concurrent use.
type Enricher struct {
	provider ai.Provider
	cfg      Config
	limiter  *rate.Limiter
	cache    *gocache.Cache
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New creates an enricher. A nil provider always yields the fallback.
func New(provider ai.Provider, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Enricher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Enricher{
		provider: provider,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, cfg.Burst),
		cache:    gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		metrics:  m,
		logger:   logger,
	}
}

// Enabled reports whether a provider is configured.
func (e *Enricher) Enabled() bool { return e.provider != nil }

// Explain returns the provider explanation for one result, or the fallback.
// It never fails.
func (e *Enricher) Explain(ctx context.Context, user category.Vector, result *matching.Result) *ai.Explanation {
	if e.provider == nil {
		return fallback(result, "")
	}

	name := e.provider.Name()
	key := cacheKey(name, user, result)
	if cached, ok := e.cache.Get(key); ok {
		e.metrics.ObserveExplanation(name, metrics.OutcomeCached, 0)
		exp := *cached.(*ai.Explanation)
		return &exp
	}

	start := time.Now()
	exp, err := e.call(ctx, user, result)
	elapsed := time.Since(start)

	if err != nil {
		e.metrics.ObserveExplanation(name, metrics.OutcomeFallback, elapsed)
		e.logger.Warn("explanation provider failed, using fallback",
			zap.String("provider", name),
			zap.String("company_id", result.Company.ID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return fallback(result, err.Error())
	}

	e.metrics.ObserveExplanation(name, metrics.OutcomeSuccess, elapsed)
	e.cache.SetDefault(key, exp)

	out := *exp
	return &out
}

func (e *Enricher) call(ctx context.Context, user category.Vector, result *matching.Result) (*ai.Explanation, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	exp, err := e.provider.Explain(ctx, ai.NewRequest(user, result))
	if err != nil {
		return nil, err
	}
	if exp == nil || strings.TrimSpace(exp.Text) == "" {
		return nil, ai.ErrEmptyResponse
	}
	if exp.Source == "" {
		exp.Source = e.provider.Name()
	}
	return exp, nil
}

// ExplainAll explains every result with bounded concurrency. The output is
// aligned with results.Items.
func (e *Enricher) ExplainAll(ctx context.Context, user category.Vector, results *matching.Results) []*ai.Explanation {
	out := make([]*ai.Explanation, results.Len())
	if results.Len() == 0 {
		return out
	}

	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)

	for i, result := range results.Items {
		g.Go(func() error {
			out[i] = e.Explain(ctx, user, result)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func fallback(result *matching.Result, reason string) *ai.Explanation {
	return &ai.Explanation{
		Text:   result.Reason,
		Source: FallbackSource,
		Error:  reason,
	}
}

func cacheKey(provider string, user category.Vector, result *matching.Result) string {
	var b strings.Builder
	b.WriteString(provider)
	b.WriteString("|")
	b.WriteString(result.Company.ID)
	for _, x := range user {
		fmt.Fprintf(&b, "|%.3f", x)
	}
	for _, x := range result.Company.Vector() {
		fmt.Fprintf(&b, "|%.3f", x)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum[:])
}
