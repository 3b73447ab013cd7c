package ports

import (
	"time"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

// TokenSigner mints signed tokens. Every call yields a fresh token, even for
// identical claims.
type TokenSigner interface {
	Issue(claims domain.TokenClaims, expiry time.Time) (string, error)
}

// TokenVerifier checks a token's signature and expiry and returns its claims.
type TokenVerifier interface {
	Parse(token string) (*domain.TokenClaims, error)
}

// PasswordHasher is the opaque hash/verify capability for credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}
