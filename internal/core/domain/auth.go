package domain

import "time"

// TokenClaims represents the JWT token payload accepted by the API
type TokenClaims struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// IsExpired checks if the token has expired
func (c *TokenClaims) IsExpired() bool {
	return time.Now().Unix() >= c.ExpiresAt
}

// AuthContext contains authenticated caller info for request context
type AuthContext struct {
	Subject string `json:"subject"`
}
