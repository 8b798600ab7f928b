package auth

import "github.com/golang-jwt/jwt/v5"

// TokenDomain separates the admin console and client dashboard signing
// domains. Each domain has its own secret and expiry; a token minted for one
// never verifies on the other.
type TokenDomain string

const (
	DomainAdmin  TokenDomain = "admin"
	DomainClient TokenDomain = "client"
)

// Claims are the only supported JWT claims shape for this service.
// Tokens are stateless bearer tokens: the server keeps no session state and
// performs no revocation tracking.
type Claims struct {
	jwt.RegisteredClaims

	UserID string      `json:"user_id"`
	Role   string      `json:"role"`
	Domain TokenDomain `json:"domain"`
}
