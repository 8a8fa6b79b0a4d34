package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
}

func TestHashPasswordClampsOutOfRangeCost(t *testing.T) {
	// bcrypt rejects costs above 31 outright; the helper must fall back to
	// the default instead of failing registration.
	hash, err := HashPassword("hunter2", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter2"))
}
