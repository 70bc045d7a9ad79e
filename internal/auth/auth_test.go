package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_RoundTrip(t *testing.T) {
	tk := NewTokens("admin-secret", time.Hour)

	s, err := tk.Issue("ops@example.com", RoleAdmin)
	require.NoError(t, err)

	c, err := tk.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", c.UserID)
	assert.Equal(t, RoleAdmin, c.Role)
}

func TestTokens_Rejects(t *testing.T) {
	tk := NewTokens("admin-secret", time.Hour)

	other, err := NewTokens("other-secret", time.Hour).Issue("x", RoleAdmin)
	require.NoError(t, err)
	_, err = tk.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens("admin-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	s, err := expired.Issue("x", RoleAdmin)
	require.NoError(t, err)
	_, err = tk.Parse(s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: RoleAdmin}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tk.Parse(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tk.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Disabled(t *testing.T) {
	tk := NewTokens("", 0)
	assert.False(t, tk.Enabled())
	_, err := tk.Issue("x", RoleAdmin)
	assert.Error(t, err)
	_, err = tk.Parse("anything")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
