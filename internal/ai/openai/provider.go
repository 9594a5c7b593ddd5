// Package openai explains matches with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/ai"
	"github.com/spigell/company-matcher/internal/utils"
)

// ProviderName identifies explanations produced by OpenAI.
const ProviderName = "openai"

const (
	defaultMaxTokens    = 500
	defaultTemperature  = 0.7
	defaultMaxLogLength = 200
)

// Config configures the provider.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Language     string
	MaxLogLength int
}

// Provider is an ai.Provider backed by OpenAI chat completions.
type Provider struct {
	client *openai.Client
	config Config
	logger *zap.Logger
}

// New creates a provider. BaseURL points the client at a compatible endpoint.
func New(config Config, logger *zap.Logger) (*Provider, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	clientConfig := openai.DefaultConfig(strings.TrimSpace(config.APIKey))
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = defaultMaxTokens
	}
	if config.MaxLogLength <= 0 {
		config.MaxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
	}, nil
}

func (p *Provider) Name() string { return ProviderName }

// Explain asks the chat model to describe the match.
func (p *Provider) Explain(ctx context.Context, req ai.Request) (*ai.Explanation, error) {
	message, err := ai.BuildMessage(req)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("openai chat completion request",
		zap.String("company_id", req.Company.ID),
		zap.String("model", p.config.Model),
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, p.config.MaxLogLength)),
	)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: ai.SystemPrompt(p.config.Language)},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		MaxTokens:   p.config.MaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)

	p.logger.Debug("openai chat completion response",
		zap.String("company_id", req.Company.ID),
		zap.Int("tokens", resp.Usage.TotalTokens),
		zap.String("response_preview", utils.TruncateForLog(raw, p.config.MaxLogLength)),
	)

	explanation, err := ai.ParseExplanation(raw)
	if err != nil {
		return nil, err
	}
	explanation.Source = ProviderName

	return explanation, nil
}
