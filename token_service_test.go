package accounts_test

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceIssueAndValidate(t *testing.T) {
	svc := accounts.NewTokenService([]byte(testSigningKey), "accounts", nil)
	userID := uuid.New()

	token, err := svc.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenServiceIssueRequiresUserID(t *testing.T) {
	svc := accounts.NewTokenService([]byte(testSigningKey), "", nil)

	_, err := svc.Issue(uuid.Nil)
	assert.Error(t, err)
}

func TestTokensForSameUserAreDistinct(t *testing.T) {
	svc := accounts.NewTokenService([]byte(testSigningKey), "", nil)
	userID := uuid.New()

	first, err := svc.Issue(userID)
	require.NoError(t, err)
	second, err := svc.Issue(userID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// both stay independently valid
	_, err = svc.Validate(first)
	assert.NoError(t, err)
	_, err = svc.Validate(second)
	assert.NoError(t, err)
}

func TestTokenServiceValidateFailures(t *testing.T) {
	svc := accounts.NewTokenService([]byte(testSigningKey), "", nil)
	userID := uuid.New()

	token, err := svc.Issue(userID)
	require.NoError(t, err)

	otherKey := accounts.NewTokenService([]byte("some-other-secret"), "", nil)
	foreign, err := otherKey.Issue(userID)
	require.NoError(t, err)

	missingSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID: uuid.NewString(),
	}).SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: userID.String(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "Malformed structure", raw: "not-a-token"},
		{name: "Empty string", raw: ""},
		{name: "Tampered payload", raw: token[:len(token)-2] + "xx"},
		{name: "Wrong signing key", raw: foreign},
		{name: "Missing subject claim", raw: missingSubject},
		{name: "Unsigned token", raw: noneAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Validate(tt.raw)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, accounts.ErrInvalidToken)
		})
	}
}

func TestTokenHasNoExpiry(t *testing.T) {
	svc := accounts.NewTokenService([]byte(testSigningKey), "", nil)

	token, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.False(t, strings.Contains(token, " "))
}
