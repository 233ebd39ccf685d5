package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/supplyconnect/internal/models"
)

func TestJWT_RoundTrip(t *testing.T) {
	SetJWTConfig("test-secret", time.Hour)
	id := uuid.New()

	token, err := GenerateJWT(id, models.RoleDealer, "Budi")
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.AccountID)
	assert.Equal(t, models.RoleDealer, claims.Role)
	assert.Equal(t, "Budi", claims.Name)
}

func TestJWT_RejectsForeignSecret(t *testing.T) {
	SetJWTConfig("first", time.Hour)
	token, err := GenerateJWT(uuid.New(), models.RoleShopkeeper, "Sari")
	require.NoError(t, err)

	SetJWTConfig("second", time.Hour)
	_, err = ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_RejectsGarbage(t *testing.T) {
	SetJWTConfig("test-secret", time.Hour)
	_, err := ValidateJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
