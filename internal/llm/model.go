// Package llm maps extracted document text onto the target form's fields
// using a generative language model.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderGoogle = "googleai"
	ProviderOpenAI = "openai"
)

type Config struct {
	Provider string // googleai | openai
	APIKey   string
	Model    string
}

// Model wraps a langchaingo LLM behind a single-prompt completion call.
type Model struct {
	llm  llms.Model
	name string
}

func NewModel(ctx context.Context, log *slog.Logger, cfg Config) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required")
	}

	var model llms.Model
	var err error

	switch cfg.Provider {
	case ProviderGoogle:
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create googleai model: %w", err)
		}

	case ProviderOpenAI:
		model, err = openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}

	log.Info("initialized llm",
		slog.String("provider", cfg.Provider),
		slog.String("model", cfg.Model),
	)

	return &Model{llm: model, name: cfg.Model}, nil
}

func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("llm completion: %w", err)
	}

	return response, nil
}

func (m *Model) Name() string {
	return m.name
}
