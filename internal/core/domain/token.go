package domain

import "time"

// TokenClaims is the identity embedded in a signed token. A token always
// carries exactly one user id and one role name.
type TokenClaims struct {
	UserID    string
	Username  string
	Role      string
	ExpiresAt time.Time

	// Populated when a token is parsed.
	IssuedAt time.Time
	TokenID  string
}
