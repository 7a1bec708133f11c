package crypto

// Provider defines the interface for cryptographic operations.
type Provider interface {
	// CheckCapability reports whether the host supports every primitive
	// the unwrapper needs.
	CheckCapability() error

	// DeriveKey derives the container key from a passphrase and salt.
	DeriveKey(passphrase string, salt []byte) []byte

	// Decrypt runs AES-CBC over whole blocks without touching padding.
	Decrypt(ciphertext, key, iv []byte) ([]byte, error)

	// Unwrap decodes, decrypts and unpads a base64 container.
	Unwrap(encoded []byte, passphrase string) ([]byte, error)
}
