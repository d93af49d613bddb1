package tokens

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	// base64url sin padding: apto para query strings sin escapar
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), a)
	assert.Len(t, a, 43) // ceil(32*8/6)
}

func TestGenerateNumericCode(t *testing.T) {
	code, err := GenerateNumericCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), code)
}

func TestSHA256Digests(t *testing.T) {
	// el hash es estable: es lo que se persiste en lugar del token
	assert.Equal(t, SHA256Base64URL("abc"), SHA256Base64URL("abc"))
	assert.NotEqual(t, SHA256Base64URL("abc"), SHA256Base64URL("abd"))
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		SHA256Hex("abc"))
}
