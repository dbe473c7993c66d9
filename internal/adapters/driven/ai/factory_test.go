package ai

import (
	"errors"
	"testing"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

func TestNewFactory(t *testing.T) {
	factory := NewFactory()
	if factory == nil {
		t.Fatal("expected non-nil factory")
	}
}

func TestFactory_CreateCompletionService_NilSettings(t *testing.T) {
	factory := NewFactory()

	svc, err := factory.CreateCompletionService(nil)
	if err != nil {
		t.Errorf("expected no error for nil settings, got %v", err)
	}
	if svc != nil {
		t.Error("expected nil service for nil settings")
	}
}

func TestFactory_CreateCompletionService_NotConfigured(t *testing.T) {
	factory := NewFactory()

	// OpenAI without an API key is the degraded mode, not an error
	settings := &domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-3.5-turbo",
	}

	svc, err := factory.CreateCompletionService(settings)
	if err != nil {
		t.Errorf("expected no error for unconfigured settings, got %v", err)
	}
	if svc != nil {
		t.Error("expected nil service for unconfigured settings")
	}
}

func TestFactory_CreateCompletionService_OpenAI(t *testing.T) {
	factory := NewFactory()

	settings := &domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		APIKey:   "sk-test",
	}

	svc, err := factory.CreateCompletionService(settings)
	if err != nil {
		t.Fatalf("expected no error for OpenAI, got %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service for OpenAI")
	}
	if svc.Model() != domain.DefaultLLMModel {
		t.Errorf("expected default model %s, got %s", domain.DefaultLLMModel, svc.Model())
	}
	if got := svc.(*OpenAICompletion).baseURL; got != domain.DefaultOpenAIBaseURL {
		t.Errorf("expected default base URL, got %s", got)
	}
}

func TestFactory_CreateCompletionService_Ollama(t *testing.T) {
	factory := NewFactory()

	settings := &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3",
	}

	svc, err := factory.CreateCompletionService(settings)
	if err != nil {
		t.Fatalf("expected no error for Ollama, got %v", err)
	}
	completion := svc.(*OpenAICompletion)
	if completion.baseURL != domain.DefaultOllamaBaseURL {
		t.Errorf("expected Ollama base URL, got %s", completion.baseURL)
	}
	if completion.Model() != "llama3" {
		t.Errorf("expected model llama3, got %s", completion.Model())
	}
}

func TestFactory_CreateCompletionService_UnknownProvider(t *testing.T) {
	factory := NewFactory()

	settings := &domain.LLMSettings{
		Provider: "mystery",
		APIKey:   "key",
	}

	_, err := factory.CreateCompletionService(settings)
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for unknown provider, got %v", err)
	}
}
