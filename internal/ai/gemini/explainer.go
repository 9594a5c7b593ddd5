package gemini

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/ai"
	"github.com/spigell/company-matcher/internal/utils"
)

// ProviderName identifies explanations produced by Gemini.
const ProviderName = "gemini"

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Explainer is an ai.Provider backed by a Gemini generator.
type Explainer struct {
	generator contentGenerator
	language  string
	logger    *zap.Logger
	maxLogLen int
}

// NewExplainer wraps the generator. Non-positive maxLogLength uses the default.
func NewExplainer(generator contentGenerator, language string, maxLogLength int, logger *zap.Logger) *Explainer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Explainer{
		generator: generator,
		language:  language,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (e *Explainer) Name() string { return ProviderName }

// Explain asks Gemini to describe the match.
func (e *Explainer) Explain(ctx context.Context, req ai.Request) (*ai.Explanation, error) {
	message, err := ai.BuildMessage(req)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content request",
		zap.String("company_id", req.Company.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, ai.SystemPrompt(e.language), message)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.String("company_id", req.Company.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	explanation, err := ai.ParseExplanation(raw)
	if err != nil {
		return nil, err
	}
	explanation.Source = ProviderName

	return explanation, nil
}
