package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewAuthService(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken("user-42")
	require.NoError(t, err)

	userID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestShortSecretRejected(t *testing.T) {
	_, err := NewAuthService("short", time.Hour)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc, err := NewAuthService(testSecret, time.Minute)
	require.NoError(t, err)
	issued := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateToken("u1")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	a, err := NewAuthService(testSecret, time.Hour)
	require.NoError(t, err)
	b, err := NewAuthService(testSecret+"-other", time.Hour)
	require.NoError(t, err)

	token, err := a.GenerateToken("u1")
	require.NoError(t, err)
	_, err = b.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnsignedTokenRejected(t *testing.T) {
	svc, err := NewAuthService(testSecret, time.Hour)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "finboard",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmptyUserIDRejected(t *testing.T) {
	svc, err := NewAuthService(testSecret, time.Hour)
	require.NoError(t, err)
	_, err = svc.GenerateToken("")
	assert.Error(t, err)
}
