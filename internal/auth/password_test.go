package auth

import (
	"strings"
	"testing"

	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	assert.True(t, CheckPassword("hunter22", hash))
	assert.False(t, CheckPassword("hunter23", hash))
	assert.False(t, CheckPassword("hunter22", "not-a-hash"))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"too short", "12345", false},
		{"minimum", "123456", true},
		{"multibyte counted as characters", "ééé", false},
		{"six multibyte characters", "éééééé", true},
		{"bcrypt limit", strings.Repeat("a", MaxPasswordLength), true},
		{"past bcrypt limit", strings.Repeat("a", MaxPasswordLength+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, models.IsKind(err, models.KindValidation))
		})
	}
}

func TestHashPassword_AcceptsLongestValidPassword(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", MaxPasswordLength))
	assert.NoError(t, err)
}
