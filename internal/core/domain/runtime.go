package domain

import "sync"

// RuntimeConfig tracks which services are available at runtime.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	StoreBackend string // "mongo", "postgres" or "redis"
	CacheEnabled bool

	// Dynamic capability flag (updated when the completion service changes)
	llmAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(storeBackend string, cacheEnabled bool) *RuntimeConfig {
	return &RuntimeConfig{
		StoreBackend: storeBackend,
		CacheEnabled: cacheEnabled,
	}
}

// LLMAvailable returns whether a completion service is configured
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// SetLLMAvailable updates the completion service availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// CanAnswerQueries returns true if query endpoints can reach a completion service
func (c *RuntimeConfig) CanAnswerQueries() bool {
	return c.LLMAvailable()
}
