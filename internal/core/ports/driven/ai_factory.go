package driven

import (
	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// AIServiceFactory creates AI services based on configuration
type AIServiceFactory interface {
	// CreateCompletionService creates a completion service from settings
	// Returns nil, nil if settings are not configured
	CreateCompletionService(settings *domain.LLMSettings) (CompletionService, error)
}
