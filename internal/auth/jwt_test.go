package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", "leadgate", 7*24*time.Hour)

	token, err := m.Issue(models.User{ID: "user-1", TokenVersion: 3})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenManager_Parse_Rejects(t *testing.T) {
	m := NewTokenManager("secret", "leadgate", time.Hour)
	valid, err := m.Issue(models.User{ID: "u"})
	require.NoError(t, err)

	expired := NewTokenManager("secret", "leadgate", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(models.User{ID: "u"})
	require.NoError(t, err)

	otherKey, err := NewTokenManager("other", "leadgate", time.Hour).Issue(models.User{ID: "u"})
	require.NoError(t, err)

	otherIssuer, err := NewTokenManager("secret", "someone-else", time.Hour).Issue(models.User{ID: "u"})
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "leadgate",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-token",
		"tampered":       valid + "x",
		"expired":        expiredToken,
		"wrong key":      otherKey,
		"wrong issuer":   otherIssuer,
		"none algorithm": noneAlg,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.Error(t, err)
		})
	}
}
