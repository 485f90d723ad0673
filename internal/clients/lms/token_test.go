package lms

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("issuer-secret"))
	require.NoError(t, err)
	return s
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{"user_id": 42, "exp": exp.Unix()})

	c, err := ParseClaims(tok)
	require.NoError(t, err)
	require.Equal(t, "42", c.LearnerID)
	require.True(t, c.ExpiresAt.Equal(exp))
	require.False(t, c.Expired(time.Now()))
	require.True(t, c.Expired(exp.Add(time.Second)))
}

func TestParseClaimsFallsBackToSubject(t *testing.T) {
	c, err := ParseClaims(signed(t, jwt.MapClaims{"sub": "learner-7"}))
	require.NoError(t, err)
	require.Equal(t, "learner-7", c.LearnerID)
	require.False(t, c.Expired(time.Now()))
}

func TestParseClaimsRejectsGarbage(t *testing.T) {
	_, err := ParseClaims("")
	require.ErrorIs(t, err, ErrNoToken)
	_, err = ParseClaims("not-a-token")
	require.Error(t, err)
}

func TestVerifyClaims(t *testing.T) {
	key := []byte("issuer-secret")
	now := time.Now()
	tok := signed(t, jwt.MapClaims{"user_id": 42, "exp": now.Add(time.Hour).Unix()})

	c, err := VerifyClaims(tok, key, func() time.Time { return now })
	require.NoError(t, err)
	require.Equal(t, "42", c.LearnerID)
	require.True(t, c.Verified)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     now.Add(time.Hour).Unix(),
	}).SignedString([]byte("someone-else"))
	require.NoError(t, err)
	_, err = VerifyClaims(forged, key, nil)
	require.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 42}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = VerifyClaims(unsigned, key, nil)
	require.Error(t, err)

	_, err = VerifyClaims(tok, key, func() time.Time { return now.Add(2 * time.Hour) })
	require.ErrorIs(t, err, ErrTokenExpired)

	_, err = VerifyClaims(tok, nil, nil)
	require.Error(t, err)
	_, err = VerifyClaims("", key, nil)
	require.ErrorIs(t, err, ErrNoToken)
}
