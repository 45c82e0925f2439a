// ABOUTME: Tests for token sealing
// ABOUTME: Verifies round trips, key validation, and passthrough of unsealed values
package db

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSealerRoundTrip(t *testing.T) {
	sealer, err := NewTokenSealer(strings.Repeat("0f", 32))
	require.NoError(t, err)

	sealed, err := sealer.Seal("ya29.token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefix))

	other, err := sealer.Seal("ya29.token")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, other, "nonces must differ")

	plain, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", plain)
}

func TestTokenSealerRejectsBadKeys(t *testing.T) {
	_, err := NewTokenSealer("not-hex")
	assert.Error(t, err)

	_, err = NewTokenSealer("abcd")
	assert.Error(t, err)
}

func TestTokenSealerPassthrough(t *testing.T) {
	var nilSealer *TokenSealer

	v, err := nilSealer.Seal("clear")
	require.NoError(t, err)
	assert.Equal(t, "clear", v)

	v, err = nilSealer.Open("clear")
	require.NoError(t, err)
	assert.Equal(t, "clear", v)

	_, err = nilSealer.Open(sealedPrefix + "AAAA")
	assert.Error(t, err)

	sealer, err := NewTokenSealer(strings.Repeat("0f", 32))
	require.NoError(t, err)
	v, err = sealer.Open("legacy-clear-token")
	require.NoError(t, err)
	assert.Equal(t, "legacy-clear-token", v)
}

func TestTokenSealerTamper(t *testing.T) {
	sealer, err := NewTokenSealer(strings.Repeat("0f", 32))
	require.NoError(t, err)

	sealed, err := sealer.Seal("secret")
	require.NoError(t, err)

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := sealedPrefix + base64.RawStdEncoding.EncodeToString(raw)

	_, err = sealer.Open(tampered)
	assert.Error(t, err)
}
