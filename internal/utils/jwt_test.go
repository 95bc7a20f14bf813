package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	st, err := NewAccessToken(testAccessSecret, 42, 15)
	require.NoError(t, err)
	require.NotEmpty(t, st.Token)

	sub, exp, err := Verify(testAccessSecret, st.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), sub)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), exp, 5*time.Second)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	st, err := NewRefreshToken(testRefreshSecret, 7, 7)
	require.NoError(t, err)

	sub, exp, err := Verify(testRefreshSecret, st.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), sub)
	assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), exp, 5*time.Second)
}

// A token signed with one secret must never verify against the other.
// This is what keeps refresh tokens out of the Authorization header.
func TestVerifyRejectsCrossSecret(t *testing.T) {
	st, err := NewAccessToken(testAccessSecret, 1, 15)
	require.NoError(t, err)

	_, _, err = Verify(testRefreshSecret, st.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, _, err := Verify(testAccessSecret, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	st, err := NewAccessToken(testAccessSecret, 1, -1)
	require.NoError(t, err)

	_, _, err = Verify(testAccessSecret, st.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	_, _, err = Verify(testAccessSecret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeUnverified(t *testing.T) {
	st, err := NewAccessToken(testAccessSecret, 99, 30)
	require.NoError(t, err)

	sub, exp, ok := DecodeUnverified(st.Token)
	require.True(t, ok)
	assert.Equal(t, uint64(99), sub)
	assert.Equal(t, st.Exp.Unix(), exp.Unix())

	_, _, ok = DecodeUnverified("garbage")
	assert.False(t, ok)
}
