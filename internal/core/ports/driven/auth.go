package driven

import "github.com/custodia-labs/csvrag/internal/core/domain"

// TokenAdapter handles bearer token signing and verification
type TokenAdapter interface {
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
