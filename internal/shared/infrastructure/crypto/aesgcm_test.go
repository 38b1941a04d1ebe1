package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestNewAESGCMFromBase64Key(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"valid", testKey(), nil},
		{"empty", "", ErrEmptyKey},
		{"short", base64.StdEncoding.EncodeToString([]byte("short")), ErrKeyLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealer, err := NewAESGCMFromBase64Key(tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sealer)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, sealer)
		})
	}

	t.Run("invalid base64", func(t *testing.T) {
		_, err := NewAESGCMFromBase64Key("not-valid-base64!!!")
		assert.Error(t, err)
	})
}

func TestAESGCM_RoundTrip(t *testing.T) {
	sealer, err := NewAESGCMFromBase64Key(testKey())
	require.NoError(t, err)

	secret := []byte("9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b")
	a, err := sealer.Seal(secret)
	require.NoError(t, err)
	b, err := sealer.Seal(secret)
	require.NoError(t, err)

	assert.False(t, bytes.Contains(a, secret))
	assert.NotEqual(t, a, b, "nonces must differ")

	opened, err := sealer.Open(a)
	require.NoError(t, err)
	assert.Equal(t, secret, opened)
}

func TestAESGCM_OpenRejectsTampering(t *testing.T) {
	sealer, err := NewAESGCMFromBase64Key(testKey())
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte("token"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = sealer.Open(sealed)
	assert.Error(t, err)

	_, err = sealer.Open([]byte{1, 2})
	assert.ErrorIs(t, err, ErrCiphertextShort)
}

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	_, err = NewAESGCMFromBase64Key(key)
	assert.NoError(t, err)
}
