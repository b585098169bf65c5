package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_IssueAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret")

	token, err := m.Issue("user-123", "u@example.com", true, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, isAdmin, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
	assert.True(t, isAdmin)
}

func TestJWTManager_IssueClaims(t *testing.T) {
	secret := "test-secret"
	m := NewJWTManager(secret)

	token, err := m.Issue("user-123", "u@example.com", false, 24*time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestJWTManager_Verify_wrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a").Issue("user-1", "a@example.com", false, time.Hour)
	require.NoError(t, err)

	_, _, err = NewJWTManager("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestJWTManager_Verify_expired(t *testing.T) {
	m := NewJWTManager("test-secret")
	token, err := m.Issue("user-1", "a@example.com", false, -time.Minute)
	require.NoError(t, err)

	_, _, err = m.Verify(token)
	assert.Error(t, err)
}

func TestJWTManager_Verify_garbage(t *testing.T) {
	m := NewJWTManager("test-secret")
	_, _, err := m.Verify("not-a-token")
	assert.Error(t, err)
}
