package token

import (
	"testing"
	"time"

	"github.com/bookbridge/bookbridge/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:        42,
		Name:      "Jean Valjean",
		Login:     "jvaljean",
		TokenSalt: "salt-one",
		Role:      models.RoleEditor,
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", time.Hour, time.Minute)

	signed, err := signer.IssueSessionToken(testUser())
	require.NoError(t, err)

	claims, err := signer.VerifySessionToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "jvaljean", claims.Login)
	assert.Equal(t, "salt-one", claims.Salt)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestInternalTokenRoundTrip(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", time.Hour, time.Minute)

	signed, err := signer.IssueInternalToken(testUser())
	require.NoError(t, err)

	claims, err := signer.VerifyInternalToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "jvaljean", claims.Login)
	assert.Equal(t, "Jean Valjean", claims.Name)
	assert.Equal(t, models.RoleEditor, claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", time.Hour, time.Minute)
	other := NewSigner("different", time.Hour, time.Minute)

	signed, err := signer.IssueSessionToken(testUser())
	require.NoError(t, err)

	_, err = other.VerifySessionToken(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", -time.Minute, -time.Minute)

	signed, err := signer.IssueSessionToken(testUser())
	require.NoError(t, err)

	_, err = signer.VerifySessionToken(signed)
	assert.Error(t, err)

	signed, err = signer.IssueInternalToken(testUser())
	require.NoError(t, err)

	_, err = signer.VerifyInternalToken(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", time.Hour, time.Minute)

	claims := SessionClaims{
		Login: "jvaljean",
		Salt:  "salt-one",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			Audience:  jwt.ClaimStrings{"somewhere-else"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = signer.VerifySessionToken(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", time.Hour, time.Minute)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = signer.VerifySessionToken(signed)
	assert.Error(t, err)
}
