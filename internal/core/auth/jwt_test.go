package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTer(now time.Time) *JWTer {
	return &JWTer{
		Secret: []byte("test-secret"),
		Issuer: "usercenter",
		TTL:    24 * time.Hour,
		Now:    func() time.Time { return now },
	}
}

func TestJWTer_IssueAndParse(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	j := newTestJWTer(now)

	tok, err := j.Issue(Identity{ID: 42, Email: "a@b.com", Name: "Alice", Role: "ADMIN", Status: "ACTIVE"})
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), c.UserID)
	assert.Equal(t, "42", c.Subject)
	assert.Equal(t, Identity{ID: 42, Email: "a@b.com", Name: "Alice", Role: "ADMIN", Status: "ACTIVE"}, c.Identity())
	assert.True(t, now.Add(24*time.Hour).Equal(c.ExpiresAt.Time))
}

func TestJWTer_ParseExpired(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := newTestJWTer(issuedAt).Issue(Identity{ID: 1})
	require.NoError(t, err)

	later := newTestJWTer(issuedAt.Add(25 * time.Hour))
	_, err = later.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTer_ParseWrongSecret(t *testing.T) {
	now := time.Now()
	tok, err := newTestJWTer(now).Issue(Identity{ID: 1})
	require.NoError(t, err)

	other := newTestJWTer(now)
	other.Secret = []byte("another-secret")
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTer_ParseWrongIssuer(t *testing.T) {
	now := time.Now()
	tok, err := newTestJWTer(now).Issue(Identity{ID: 1})
	require.NoError(t, err)

	other := newTestJWTer(now)
	other.Issuer = "someone-else"
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTer_ParseMalformed(t *testing.T) {
	_, err := newTestJWTer(time.Now()).Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTer_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "usercenter",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newTestJWTer(now).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
