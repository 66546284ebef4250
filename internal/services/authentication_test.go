package services

import (
	"testing"

	"flirtquest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthenticationRequiresSecret(t *testing.T) {
	_, err := NewAuthentication("")
	assert.Error(t, err)

	authentication, err := NewAuthentication("test-secret")
	assert.NoError(t, err)
	assert.NotNil(t, authentication)
}

func TestTokenPairRoundTrip(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	user := &models.User{ID: "user-1", Email: "ana@example.com"}
	pair, err := authentication.CreateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, int(ACCESS_TOKEN_TTL.Seconds()), pair.ExpiresIn)

	fromAccess, err := authentication.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", fromAccess.ID)
	assert.Equal(t, "ana@example.com", fromAccess.Email)

	fromRefresh, err := authentication.ValidateRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", fromRefresh.ID)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	pair, err := authentication.CreateTokenPair(&models.User{ID: "user-1", Email: "ana@example.com"})
	require.NoError(t, err)

	_, err = authentication.Validate(pair.RefreshToken)
	assert.Error(t, err)

	_, err = authentication.ValidateRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	signer, err := NewAuthentication("secret-a")
	require.NoError(t, err)
	verifier, err := NewAuthentication("secret-b")
	require.NoError(t, err)

	pair, err := signer.CreateTokenPair(&models.User{ID: "user-1", Email: "ana@example.com"})
	require.NoError(t, err)

	_, err = verifier.Validate(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	_, err = authentication.Validate("not-a-token")
	assert.Error(t, err)
}
