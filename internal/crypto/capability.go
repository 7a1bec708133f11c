package crypto

import (
	"bytes"
	stdcrypto "crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"github.com/TheMichaelB/pwexport/internal/models"
)

var (
	capabilityOnce sync.Once
	capabilityErr  error
)

// CheckCapability runs a one-time self-test of SHA-256, PBKDF2 and
// AES-CBC. The result is cached for the process.
func (p *CryptoProvider) CheckCapability() error {
	capabilityOnce.Do(func() {
		capabilityErr = selfTest()
	})
	return capabilityErr
}

// CapabilityAvailable reports whether the default provider can unwrap
// containers on this host.
func CapabilityAvailable() bool {
	return NewProvider().CheckCapability() == nil
}

func selfTest() (err error) {
	primitive := "sha256"
	defer func() {
		if r := recover(); r != nil {
			err = &models.CapabilityError{
				Primitive: primitive,
				Err:       fmt.Errorf("panic: %v", r),
			}
		}
	}()

	if !stdcrypto.SHA256.Available() {
		return &models.CapabilityError{Primitive: primitive}
	}

	primitive = "pbkdf2"
	salt := make([]byte, SaltSize)
	k1 := pbkdf2.Key([]byte("self-test"), salt, 2, KeySize, sha256.New)
	k2 := pbkdf2.Key([]byte("self-test"), salt, 2, KeySize, sha256.New)
	if len(k1) != KeySize || !bytes.Equal(k1, k2) {
		return &models.CapabilityError{Primitive: primitive}
	}

	primitive = "aes-cbc"
	block, err := aes.NewCipher(k1)
	if err != nil {
		return &models.CapabilityError{Primitive: primitive, Err: err}
	}

	iv := make([]byte, IVSize)
	sample := bytes.Repeat([]byte{0x5a}, 2*BlockSize)
	sealed := make([]byte, len(sample))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(sealed, sample)

	opened := make([]byte, len(sealed))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(opened, sealed)
	if !bytes.Equal(opened, sample) || bytes.Equal(sealed, sample) {
		return &models.CapabilityError{Primitive: primitive}
	}

	return nil
}
