package driven

import (
	"context"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// CompletionService generates text from a chat prompt.
// Failures are reported wrapped with domain.ErrUpstream; no retries are attempted.
type CompletionService interface {
	// Complete returns the full generated text
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)

	// Stream returns generated text incrementally.
	// Cancelling ctx or closing the stream aborts the upstream request.
	Stream(ctx context.Context, messages []domain.ChatMessage) (domain.TokenStream, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the completion service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the completion service
	Close() error
}
