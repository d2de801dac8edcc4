package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", 4)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)
}

func TestHashPasswordClampsBadCost(t *testing.T) {
	// A misconfigured BCRYPT_COST must not break hashing.
	for _, cost := range []int{0, -1, 99} {
		hash, err := HashPassword("hunter2", cost)
		assert.NoError(t, err)
		assert.True(t, VerifyPassword(hash, "hunter2"))
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	assert.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "hunter2"))
}
