// Package llm selects and constructs the configured LLM provider.
package llm

import (
	"fmt"
	"time"

	"github.com/custodia-labs/nexus-cli/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/nexus-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/nexus-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
)

// Supported provider names.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// FactoryConfig holds the provider selection and its settings.
type FactoryConfig struct {
	// Provider is one of ollama, openai, or anthropic. Empty means ollama.
	Provider string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// Model overrides the provider's default model.
	Model string

	// APIKey is required for hosted providers, ignored by ollama.
	APIKey string

	// Timeout bounds one generation request.
	Timeout time.Duration
}

// New constructs the LLM service for the configured provider.
func New(cfg FactoryConfig) (driven.LLMService, error) {
	switch cfg.Provider {
	case "", ProviderOllama:
		return ollama.NewLLMService(ollama.LLMConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil

	case ProviderOpenAI:
		svc, err := openai.NewLLMService(openai.LLMConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("creating openai service: %w", err)
		}
		return svc, nil

	case ProviderAnthropic:
		svc, err := anthropic.NewLLMService(anthropic.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("creating anthropic service: %w", err)
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
