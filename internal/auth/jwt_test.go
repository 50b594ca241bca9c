package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken(Identity{UserID: "u-1", Role: RoleAdmin})
	require.NoError(t, err)

	id, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.True(t, id.IsAdmin())
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("one", 0).GenerateToken(Identity{UserID: "u-1", Role: RoleRegular})
	require.NoError(t, err)

	_, err = NewManager("two", 0).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewManager("s", 0)
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   "u-1",
		"type": "regular",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	token, err := raw.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsUnknownRole(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u-1", "type": "superuser"})
	token, err := raw.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewManager("s", 0).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateAcceptsSubClaim(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-9", "type": "regular"})
	token, err := raw.SignedString([]byte("s"))
	require.NoError(t, err)

	id, err := NewManager("s", 0).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u-9", Role: RoleRegular}, id)
}
