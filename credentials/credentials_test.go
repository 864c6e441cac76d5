package credentials

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHashAndVerifyPassword(t *testing.T) {
	s := New("secret", bcrypt.MinCost)

	hash, err := s.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, s.VerifyPassword("secret1", hash))
	assert.False(t, s.VerifyPassword("secret2", hash))
	assert.False(t, s.VerifyPassword("secret1", "not-a-hash"))
	assert.False(t, s.VerifyPassword("secret1", ""))
}

func TestHashPasswordTooLong(t *testing.T) {
	s := New("secret", bcrypt.MinCost)
	_, err := s.HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)
}

func TestIssueAndValidateToken(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New("secret", bcrypt.MinCost, WithClock(fixedClock(issued)))

	token, expiresAt, err := s.IssueToken("alice", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(30*time.Minute), expiresAt)

	username, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	t.Run("still valid just before expiry", func(t *testing.T) {
		later := New("secret", bcrypt.MinCost, WithClock(fixedClock(issued.Add(29*time.Minute))))
		_, err := later.ValidateToken(token)
		assert.NoError(t, err)
	})

	t.Run("rejected after expiry", func(t *testing.T) {
		later := New("secret", bcrypt.MinCost, WithClock(fixedClock(issued.Add(31*time.Minute))))
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejected with another secret", func(t *testing.T) {
		other := New("other-secret", bcrypt.MinCost, WithClock(fixedClock(issued)))
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIssueTokenDefaultTTL(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New("secret", bcrypt.MinCost, WithClock(fixedClock(issued)))

	_, expiresAt, err := s.IssueToken("alice", 0)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(DefaultTokenTTL), expiresAt)
}

func TestIssueTokenUniqueIDs(t *testing.T) {
	s := New("secret", bcrypt.MinCost)
	first, _, err := s.IssueToken("alice", time.Minute)
	require.NoError(t, err)
	second, _, err := s.IssueToken("alice", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestValidateTokenRejects(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New("secret", bcrypt.MinCost, WithClock(fixedClock(now)))
	exp := jwt.NewNumericDate(now.Add(time.Hour))

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.RegisteredClaims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}

	cases := map[string]string{
		"garbage":         "not.a.token",
		"empty":           "",
		"other algorithm": sign(jwt.SigningMethodHS512, []byte("secret"), jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp}),
		"no expiry":       sign(jwt.SigningMethodHS256, []byte("secret"), jwt.RegisteredClaims{Subject: "alice"}),
		"no subject":      sign(jwt.SigningMethodHS256, []byte("secret"), jwt.RegisteredClaims{ExpiresAt: exp}),
		"unsigned":        sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
