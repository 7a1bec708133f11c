package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Seal encrypts plaintext into a base64 container with a random salt and
// IV, the inverse of Unwrap.
func Seal(plaintext []byte, passphrase string) (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate IV: %w", err)
	}

	return SealWith(plaintext, passphrase, salt, iv)
}

// SealWith encrypts with a caller-chosen salt and IV.
// Format: base64(salt || IV || AES-256-CBC(padded plaintext))
func SealWith(plaintext []byte, passphrase string, salt, iv []byte) (string, error) {
	if len(salt) != SaltSize {
		return "", fmt.Errorf("invalid salt size: expected %d, got %d", SaltSize, len(salt))
	}
	if len(iv) != IVSize {
		return "", ErrInvalidIV
	}

	provider := &CryptoProvider{iterations: Iterations}
	key := provider.DeriveKey(passphrase, salt)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	padded := addPadding(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	result := make([]byte, 0, HeaderSize+len(ciphertext))
	result = append(result, salt...)
	result = append(result, iv...)
	result = append(result, ciphertext...)

	return base64.StdEncoding.EncodeToString(result), nil
}

func addPadding(b []byte) []byte {
	n := BlockSize - len(b)%BlockSize
	return append(append([]byte{}, b...), bytes.Repeat([]byte{byte(n)}, n)...)
}
