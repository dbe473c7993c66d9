package domain

import (
	"sync"
	"testing"
)

func TestNewRuntimeConfig(t *testing.T) {
	config := NewRuntimeConfig("mongo", true)

	if config == nil {
		t.Fatal("expected non-nil config")
	}
	if config.StoreBackend != "mongo" {
		t.Errorf("expected mongo, got %s", config.StoreBackend)
	}
	if !config.CacheEnabled {
		t.Error("expected cache to be enabled")
	}
	if config.LLMAvailable() {
		t.Error("expected LLM to be unavailable initially")
	}
}

func TestRuntimeConfig_LLMAvailable(t *testing.T) {
	config := NewRuntimeConfig("postgres", false)

	// Initially unavailable
	if config.CanAnswerQueries() {
		t.Error("expected queries to be unavailable initially")
	}

	config.SetLLMAvailable(true)
	if !config.LLMAvailable() {
		t.Error("expected LLM to be available after setting")
	}
	if !config.CanAnswerQueries() {
		t.Error("expected queries to be available after setting")
	}

	config.SetLLMAvailable(false)
	if config.LLMAvailable() {
		t.Error("expected LLM to be unavailable after clearing")
	}
}

func TestRuntimeConfig_ConcurrentAccess(t *testing.T) {
	config := NewRuntimeConfig("redis", false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(v bool) {
			defer wg.Done()
			config.SetLLMAvailable(v)
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			_ = config.LLMAvailable()
		}()
	}
	wg.Wait()
}
