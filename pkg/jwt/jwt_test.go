package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubject() SessionSubject {
	return SessionSubject{
		ProfileID: "6f1c1a43-3b8e-4b9f-9d55-3f0f6cbb7e10",
		Email:     "guia@explore.pe",
		Name:      "María Gómez",
		Role:      "guide",
		UserType:  "explorer",
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "explorepe-api", 24)

	token, err := tm.GenerateToken(testSubject())
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "6f1c1a43-3b8e-4b9f-9d55-3f0f6cbb7e10", claims.ProfileID)
	assert.Equal(t, "6f1c1a43-3b8e-4b9f-9d55-3f0f6cbb7e10", claims.Subject)
	assert.Equal(t, "explorer", claims.UserType)
	assert.Equal(t, "guide", claims.Role)
	assert.Equal(t, 24*time.Hour, tm.GetExpirationTime())
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret", "explorepe-api", 1).GenerateToken(testSubject())
	require.NoError(t, err)

	_, err = NewTokenManager("other", "explorepe-api", 1).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	token, err := NewTokenManager("secret", "someone-else", 1).GenerateToken(testSubject())
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "explorepe-api", 1).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	claims := SessionClaims{
		ProfileID: "id",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(past),
			Issuer:    "explorepe-api",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "explorepe-api", 1).ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
