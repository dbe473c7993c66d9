package ai

import (
	"fmt"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates AI services based on configuration
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateCompletionService creates a completion service from settings
func (f *Factory) CreateCompletionService(settings *domain.LLMSettings) (driven.CompletionService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return NewOpenAICompletion(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderOllama:
		// Ollama serves the OpenAI chat-completions protocol under /v1
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = domain.DefaultOllamaBaseURL
		}
		return newCompletion(settings.APIKey, settings.Model, baseURL)
	default:
		return nil, fmt.Errorf("%w: unknown AI provider %q", domain.ErrBadRequest, settings.Provider)
	}
}
