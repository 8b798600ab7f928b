package auth

import (
	"errors"
	"time"

	"voicecampaign-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Manager issues and verifies bearer tokens for one signing domain.
// Build two of these (admin + client) from config; never share secrets.
type Manager struct {
	domain TokenDomain
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewManager(domain TokenDomain, issuer string, cfg config.TokenConfig) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	if domain != DomainAdmin && domain != DomainClient {
		return nil, errors.New("unknown token domain")
	}

	return &Manager{
		domain: domain,
		secret: []byte(cfg.Secret),
		issuer: issuer,
		ttl:    cfg.TTL,
	}, nil
}

func (m *Manager) Domain() TokenDomain { return m.domain }

// Issue mints a signed access token bound to {user id, role}.
func (m *Manager) Issue(now time.Time, userID, role string) (string, error) {
	if userID == "" || role == "" {
		return "", errors.New("user_id and role are required")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
		UserID: userID,
		Role:   role,
		Domain: m.domain,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify parses and validates a token for this manager's domain.
func (m *Manager) Verify(tokenString string, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	validator := jwt.NewValidator(opts...)
	if err := validator.Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, err
	}

	if claims.Domain != m.domain {
		return Claims{}, errors.New("token domain mismatch")
	}
	if claims.UserID == "" {
		return Claims{}, errors.New("user_id missing")
	}
	if claims.Role == "" {
		return Claims{}, errors.New("role missing")
	}

	return claims, nil
}
