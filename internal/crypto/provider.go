package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"unicode"

	"golang.org/x/crypto/pbkdf2"

	"github.com/TheMichaelB/pwexport/internal/models"
)

const (
	// Container layout
	SaltSize   = models.ContainerSaltSize
	IVSize     = models.ContainerIVSize
	HeaderSize = models.ContainerHeader
	BlockSize  = aes.BlockSize

	// KeySize is the AES-256 key length.
	KeySize = 32

	// Iterations must match the exporting app.
	Iterations = 70000
)

// Errors
var (
	ErrInvalidKey = errors.New("invalid key size")
	ErrInvalidIV  = errors.New("invalid IV size")
)

// CryptoProvider handles all cryptographic operations.
type CryptoProvider struct {
	iterations int
}

// NewProvider creates a crypto provider.
func NewProvider() Provider {
	return &CryptoProvider{
		iterations: Iterations,
	}
}

// Container is a decoded export: salt, IV and ciphertext.
type Container struct {
	Salt       []byte
	IV         []byte
	Ciphertext []byte
}

// DecodeContainer base64-decodes encoded, ignoring whitespace from line
// wrapping. Padded standard encoding is tried before unpadded.
func DecodeContainer(encoded []byte) ([]byte, error) {
	compact := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, encoded)

	raw, err := base64.StdEncoding.DecodeString(string(compact))
	if err == nil {
		return raw, nil
	}

	if rawUnpadded, rawErr := base64.RawStdEncoding.DecodeString(string(compact)); rawErr == nil {
		return rawUnpadded, nil
	}

	return nil, &models.FormatError{
		Stage:  "decode",
		Reason: "input is not valid base64",
		Err:    err,
	}
}

// ParseContainer splits raw bytes into salt, IV and ciphertext.
func ParseContainer(raw []byte) (*Container, error) {
	if len(raw) < HeaderSize {
		return nil, &models.FormatError{
			Stage:  "container",
			Reason: fmt.Sprintf("%d bytes is shorter than salt and IV (%d bytes)", len(raw), HeaderSize),
			Err:    models.ErrInvalidContainer,
		}
	}

	return &Container{
		Salt:       raw[:SaltSize],
		IV:         raw[SaltSize:HeaderSize],
		Ciphertext: raw[HeaderSize:],
	}, nil
}

// DeriveKey derives the container key using PBKDF2-HMAC-SHA256.
func (p *CryptoProvider) DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key(
		[]byte(passphrase),
		salt,
		p.iterations,
		KeySize,
		sha256.New,
	)
}

// Decrypt decrypts whole AES-CBC blocks. Padding is left in place.
func (p *CryptoProvider) Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	if len(iv) != IVSize {
		return nil, ErrInvalidIV
	}

	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, &models.DecryptionError{
			Stage:  "decrypt",
			Reason: fmt.Sprintf("ciphertext length %d is not a positive multiple of %d", len(ciphertext), BlockSize),
			Err:    models.ErrInvalidCiphertext,
		}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return plaintext, nil
}

// Unwrap turns a base64 container and passphrase into plaintext.
func (p *CryptoProvider) Unwrap(encoded []byte, passphrase string) ([]byte, error) {
	raw, err := DecodeContainer(encoded)
	if err != nil {
		return nil, err
	}

	container, err := ParseContainer(raw)
	if err != nil {
		return nil, err
	}

	key := p.DeriveKey(passphrase, container.Salt)
	defer zeroBytes(key)

	plaintext, err := p.Decrypt(container.Ciphertext, key, container.IV)
	if err != nil {
		return nil, err
	}

	return RemovePadding(plaintext)
}

// RemovePadding strips trailing padding: the last byte counts the bytes,
// itself included, to drop.
func RemovePadding(buf []byte) ([]byte, error) {
	if len(buf) == 0 {
		return nil, &models.DecryptionError{
			Stage:  "padding",
			Reason: "empty plaintext",
			Err:    models.ErrInvalidPadding,
		}
	}

	n := int(buf[len(buf)-1])
	if n == 0 || n > len(buf) {
		return nil, &models.DecryptionError{
			Stage:  "padding",
			Reason: fmt.Sprintf("padding length %d out of range for %d bytes (wrong passphrase or corrupted data?)", n, len(buf)),
			Err:    models.ErrInvalidPadding,
		}
	}

	if n == len(buf) {
		return nil, &models.DecryptionError{
			Stage:  "padding",
			Reason: "no data left after removing padding (wrong passphrase or corrupted data?)",
			Err:    models.ErrInvalidPadding,
		}
	}

	return buf[:len(buf)-n], nil
}

// zeroBytes overwrites key material.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
