package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven/mocks"
)

func newTestAuthService() (*mocks.MockTokenAdapter, *authService) {
	tokenAdapter := mocks.NewMockTokenAdapter()
	svc := NewAuthService(tokenAdapter).(*authService)
	return tokenAdapter, svc
}

func TestAuthService_Enabled(t *testing.T) {
	_, svc := newTestAuthService()
	if !svc.Enabled() {
		t.Error("expected auth to be enabled with a token adapter")
	}

	disabled := NewAuthService(nil)
	if disabled.Enabled() {
		t.Error("expected auth to be disabled without a token adapter")
	}
}

func TestAuthService_IssueAndValidate(t *testing.T) {
	_, svc := newTestAuthService()
	ctx := context.Background()

	token, err := svc.IssueToken(ctx, "  ops  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	authCtx, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authCtx.Subject != "ops" {
		t.Errorf("expected subject ops, got %s", authCtx.Subject)
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	tokenAdapter, svc := newTestAuthService()
	ctx := context.Background()

	expired, _ := tokenAdapter.GenerateToken(&domain.TokenClaims{
		Subject:   "ops",
		IssuedAt:  time.Now().Add(-48 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-24 * time.Hour).Unix(),
	})

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "%%%not-base64"},
		{"expired token", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(ctx, tt.token)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestAuthService_Disabled(t *testing.T) {
	svc := NewAuthService(nil)
	ctx := context.Background()

	if _, err := svc.ValidateToken(ctx, "anything"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.IssueToken(ctx, "ops"); !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}

func TestAuthService_IssueToken_EmptySubject(t *testing.T) {
	_, svc := newTestAuthService()

	if _, err := svc.IssueToken(context.Background(), " "); !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}
