package driving

import (
	"context"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// AuthService validates API bearer tokens
type AuthService interface {
	// Enabled reports whether requests must carry a token
	Enabled() bool

	// ValidateToken validates a token and returns the caller's auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	// IssueToken mints a token for subject
	IssueToken(ctx context.Context, subject string) (string, error)
}
