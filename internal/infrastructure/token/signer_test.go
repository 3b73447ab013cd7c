package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestSigner(t *testing.T, issuer string) *Signer {
	t.Helper()
	s, err := NewSigner(testKey, issuer)
	require.NoError(t, err)
	return s
}

func TestNewSigner_RejectsShortKey(t *testing.T) {
	_, err := NewSigner([]byte("short"), "")
	assert.ErrorIs(t, err, ErrKeyTooShort)
}

func TestNewSigner_CopiesKey(t *testing.T) {
	key := append([]byte(nil), testKey...)
	s, err := NewSigner(key, "")
	require.NoError(t, err)

	key[0] = 'X'
	assert.Equal(t, testKey, s.key)
}

func TestSigner_IssueAndParse(t *testing.T) {
	s := newTestSigner(t, "financial-organizer")
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	raw, err := s.Issue(domain.TokenClaims{UserID: "u-1", Username: "Ada Lovelace", Role: "User"}, expiry)
	require.NoError(t, err)

	claims, err := s.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "Ada Lovelace", claims.Username)
	assert.Equal(t, "User", claims.Role)
	assert.True(t, claims.ExpiresAt.Equal(expiry))
	assert.NotEmpty(t, claims.TokenID)
}

func TestSigner_TokenVerifiableWithSharedKey(t *testing.T) {
	s := newTestSigner(t, "")
	raw, err := s.Issue(domain.TokenClaims{UserID: "u-1", Username: "Ada Lovelace", Role: "User"}, time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return testKey, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, "HS256", parsed.Method.Alg())
	assert.Equal(t, "u-1", claims["sub"])
	assert.Equal(t, "Ada Lovelace", claims["unique_name"])
	assert.Equal(t, "User", claims["role"])
	assert.Contains(t, claims, "exp")
}

func TestSigner_FreshTokenPerCall(t *testing.T) {
	s := newTestSigner(t, "")
	claims := domain.TokenClaims{UserID: "u-1", Username: "Ada Lovelace", Role: "User"}
	expiry := time.Now().Add(time.Hour)

	first, err := s.Issue(claims, expiry)
	require.NoError(t, err)
	second, err := s.Issue(claims, expiry)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSigner_IssueRequiresIdentity(t *testing.T) {
	s := newTestSigner(t, "")
	_, err := s.Issue(domain.TokenClaims{Username: "x"}, time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestSigner_ParseRejects(t *testing.T) {
	s := newTestSigner(t, "issuer-a")
	valid, err := s.Issue(domain.TokenClaims{UserID: "u-1", Username: "n", Role: "User"}, time.Now().Add(time.Hour))
	require.NoError(t, err)

	expired, err := s.Issue(domain.TokenClaims{UserID: "u-1", Username: "n", Role: "User"}, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	otherKey, err := NewSigner([]byte("ffffffffffffffffffffffffffffffff"), "issuer-a")
	require.NoError(t, err)
	foreign, err := otherKey.Issue(domain.TokenClaims{UserID: "u-1", Username: "n", Role: "User"}, time.Now().Add(time.Hour))
	require.NoError(t, err)

	otherIssuer, err := NewSigner(testKey, "issuer-b")
	require.NoError(t, err)
	wrongIssuer, err := otherIssuer.Issue(domain.TokenClaims{UserID: "u-1", Username: "n", Role: "User"}, time.Now().Add(time.Hour))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			Issuer:    "issuer-a",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "User",
	}).SignedString(testKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"tampered", valid + "x"},
		{"expired", expired},
		{"foreign_key", foreign},
		{"wrong_issuer", wrongIssuer},
		{"wrong_algorithm", hs512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
