package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := NewArgon2id()

	encoded, err := h.Hash("hunter2!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))
	assert.NotContains(t, encoded, "hunter2")

	assert.True(t, h.Verify("hunter2!", encoded))
	assert.False(t, h.Verify("wrong", encoded))
}

func TestHashIsSalted(t *testing.T) {
	h := NewArgon2id()

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	h := NewArgon2id()
	_, err := h.Hash("")
	assert.Error(t, err)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h := NewArgon2id()

	assert.False(t, h.Verify("x", ""))
	assert.False(t, h.Verify("x", "plain-hash"))
	assert.False(t, h.Verify("x", "$bcrypt$whatever"))
	assert.False(t, h.Verify("x", "$argon2id$v=19$m=bad$salt$dk"))
}
