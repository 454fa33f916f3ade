package sealer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"text", []byte("hello, naughty coder")},
		{"binary", bytes.Repeat([]byte{0x00, 0xff, 0x7f}, 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := s.Seal(tt.data)
			require.NoError(t, err)
			assert.Len(t, sealed, len(tt.data)+24+16)
			if len(tt.data) > 0 {
				assert.NotContains(t, string(sealed), string(tt.data))
			}

			opened, err := s.Open(sealed)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.data, opened))
		})
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	a, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpenRejectsTamperingAndForeignKeys(t *testing.T) {
	s1, err := New()
	require.NoError(t, err)
	s2, err := New()
	require.NoError(t, err)

	sealed, err := s1.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = s2.Open(sealed)
	assert.Error(t, err)

	sealed[len(sealed)-1] ^= 0x01
	_, err = s1.Open(sealed)
	assert.Error(t, err)

	_, err = s1.Open([]byte("short"))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestNewWithKeyRejectsBadKey(t *testing.T) {
	_, err := NewWithKey([]byte("too short"))
	assert.Error(t, err)
}
