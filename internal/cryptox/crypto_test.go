package cryptox

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveMasterKey(password, salt)
	key2 := DeriveMasterKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != 32 {
		t.Errorf("expected 32-byte key, got %d (%s)", len(key1), hex.EncodeToString(key1))
	}
}

func TestDeriveMasterKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")
	salt1 := []byte("salt-1")
	salt2 := []byte("salt-2")

	key1 := DeriveMasterKey(password, salt1)
	key2 := DeriveMasterKey(password, salt2)

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func testKey() []byte {
	return DeriveMasterKey([]byte("passphrase"), []byte("0123456789abcdef"))
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := testKey()
	sealed, err := Seal(key, []byte("bearer-token"))
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "bearer-token")

	plain, err := Open(key, sealed)
	require.NoError(t, err)
	require.Equal(t, "bearer-token", string(plain))
}

func TestOpen_WrongKeyFails(t *testing.T) {
	sealed, err := Seal(testKey(), []byte("x"))
	require.NoError(t, err)

	other := DeriveMasterKey([]byte("other"), []byte("0123456789abcdef"))
	_, err = Open(other, sealed)
	require.Error(t, err)

	_, err = Open(other, []byte{1, 2})
	require.ErrorIs(t, err, ErrMalformed)
}

func TestSealer_Strings(t *testing.T) {
	s := NewSealer(testKey())

	stored, err := s.SealString("tok")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stored, sealedPrefix))

	plain, err := s.OpenString(stored)
	require.NoError(t, err)
	require.Equal(t, "tok", plain)

	// legacy plain values pass through
	plain, err = s.OpenString("plain-token")
	require.NoError(t, err)
	require.Equal(t, "plain-token", plain)
}

func TestSealer_NoKeyStoresPlain(t *testing.T) {
	s := NewSealer(nil)
	stored, err := s.SealString("tok")
	require.NoError(t, err)
	require.Equal(t, "tok", stored)

	_, err = s.OpenString(sealedPrefix + "AAAA")
	require.ErrorIs(t, err, ErrMalformed)
}
