// Package token mints and verifies the service's bearer tokens.
//
// Tokens are HS256-signed JWTs. Any relying party holding the same key can
// verify them; the claim set is:
//
//	sub          user id
//	unique_name  username
//	role         role name
//	exp, iat     expiry and issue time (unix seconds)
//	jti          random token id, unique per issued token
//	iss          issuer, when configured
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

// MinKeyLength is the shortest accepted signing key, in bytes.
const MinKeyLength = 32

var (
	ErrKeyTooShort  = fmt.Errorf("token: signing key must be at least %d bytes", MinKeyLength)
	ErrInvalidToken = errors.New("token: invalid token")
)

// Claims is the JWT payload of an issued token.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"unique_name"`
	Role     string `json:"role"`
}

// Signer holds the process-wide signing key. It is immutable after
// construction and safe for concurrent use.
type Signer struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewSigner copies key and returns a Signer. issuer may be empty.
func NewSigner(key []byte, issuer string) (*Signer, error) {
	if len(key) < MinKeyLength {
		return nil, ErrKeyTooShort
	}
	return &Signer{
		key:    append([]byte(nil), key...),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue signs claims into a token that expires at expiry.
func (s *Signer) Issue(claims domain.TokenClaims, expiry time.Time) (string, error) {
	if claims.UserID == "" || claims.Role == "" {
		return "", errors.New("token: user id and role are required")
	}

	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.NewString(),
		},
		Username: claims.Username,
		Role:     claims.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, algorithm, expiry and issuer of raw and
// returns its claims.
func (s *Signer) Parse(raw string) (*domain.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var c Claims
	tkn, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid || c.Subject == "" || c.Role == "" {
		return nil, ErrInvalidToken
	}

	out := &domain.TokenClaims{
		UserID:   c.Subject,
		Username: c.Username,
		Role:     c.Role,
		TokenID:  c.ID,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	return out, nil
}
