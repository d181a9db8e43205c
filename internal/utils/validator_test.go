// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type addrFixture struct {
	Address string `validate:"required,solana_address"`
}

func TestValidateSolanaAddress(t *testing.T) {
	valid := []string{
		"4Nd1mYvR9K6mJzfJkLxQZbVt1wHqB2v8pXc3sD5eF7gh",
		"11111111111111111111111111111111",
	}
	for _, addr := range valid {
		assert.NoError(t, ValidateStruct(&addrFixture{Address: addr}), addr)
	}

	invalid := []string{
		"",
		"short",
		// excluded base58 characters, then one over the length cap
		"0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl",
		"4Nd1mYvR9K6mJzfJkLxQZbVt1wHqB2v8pXc3sD5eF7gh4Nd1m",
	}
	for _, addr := range invalid {
		assert.Error(t, ValidateStruct(&addrFixture{Address: addr}), addr)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT("operator", "admin", 1)
	assert.NoError(t, err)

	claims, err := ValidateJWT(token)
	assert.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
	assert.Equal(t, "admin", claims.UserType)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("secret-a")
	token, err := GenerateJWT("operator", "admin", 1)
	assert.NoError(t, err)

	SetJWTSecret("secret-b")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	assert.NoError(t, err)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}
