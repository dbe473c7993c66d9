package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
	"github.com/custodia-labs/csvrag/internal/core/ports/driving"
)

// DefaultTokenTTL is the lifetime of tokens minted by IssueToken
const DefaultTokenTTL = 24 * time.Hour

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService implements the AuthService interface.
// A nil token adapter disables authentication.
type authService struct {
	tokenAdapter driven.TokenAdapter
	tokenTTL     time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(tokenAdapter driven.TokenAdapter) driving.AuthService {
	return &authService{
		tokenAdapter: tokenAdapter,
		tokenTTL:     DefaultTokenTTL,
	}
}

// Enabled reports whether requests must carry a bearer token
func (s *authService) Enabled() bool {
	return s.tokenAdapter != nil
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: authentication is not configured", domain.ErrUnauthorized)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}

	claims, err := s.tokenAdapter.ParseToken(token)
	if err != nil {
		return nil, err
	}

	// Check expiration
	if claims.IsExpired() {
		return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
	}

	return &domain.AuthContext{Subject: claims.Subject}, nil
}

// IssueToken mints a bearer token for subject
func (s *authService) IssueToken(ctx context.Context, subject string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("%w: authentication is not configured", domain.ErrBadRequest)
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("%w: subject is required", domain.ErrBadRequest)
	}

	now := time.Now()
	return s.tokenAdapter.GenerateToken(&domain.TokenClaims{
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenTTL).Unix(),
	})
}
