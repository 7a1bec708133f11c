package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Published PBKDF2-HMAC-SHA256 vectors for P="password", S="salt", dkLen=32.
func TestDeriveKey_KnownAnswers(t *testing.T) {
	tests := []struct {
		iterations int
		want       string
	}{
		{1, "120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b"},
		{2, "ae4d0c95af6b46d32d0adff928f06dd02a303f8ef3c251dfd6e2d85a95474c43"},
		{4096, "c5e478d59288c841aa530db6845c4c8d962893a001ce4e11a4963873aa98134a"},
	}

	for _, tt := range tests {
		p := &CryptoProvider{iterations: tt.iterations}
		key := p.DeriveKey("password", []byte("salt"))

		want, err := hex.DecodeString(tt.want)
		require.NoError(t, err)
		assert.Equal(t, want, key, "iterations=%d", tt.iterations)
	}
}

func TestNewProvider_Iterations(t *testing.T) {
	assert.Equal(t, 70000, Iterations)
	assert.Equal(t, 70000, NewProvider().(*CryptoProvider).iterations)
	assert.Equal(t, 32, KeySize)
}
