package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWipeByteArray(t *testing.T) {
	password := []byte("s3cret-passw0rd")
	alias := password[:6]

	WipeByteArray(password)

	assert.Equal(t, make([]byte, len(password)), password)
	assert.Equal(t, make([]byte, 6), alias, "wipe works in place")
	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestGenerateRandByteArray_SaltSized(t *testing.T) {
	a := GenerateRandByteArray(16)
	b := GenerateRandByteArray(16)
	require.Len(t, a, 16)
	require.Len(t, b, 16)
	assert.False(t, bytes.Equal(a, b), "two salts must differ")
	assert.Empty(t, GenerateRandByteArray(0))
}
