package models

import (
	"errors"
	"fmt"
)

// Error codes for structured error handling.
const (
	ErrCodeFormat     = "FORMAT_ERROR"
	ErrCodeDecryption = "DECRYPTION_ERROR"
	ErrCodeCapability = "CAPABILITY_ERROR"
	ErrCodeStorage    = "STORAGE_ERROR"
	ErrCodeConfig     = "CONFIG_ERROR"
	ErrCodeUnknown    = "UNKNOWN_ERROR"
)

// Sentinel errors
var (
	ErrInvalidContainer  = errors.New("invalid container")
	ErrInvalidCiphertext = errors.New("invalid ciphertext length")
	ErrInvalidPadding    = errors.New("invalid padding")
	ErrMissingSentinel   = errors.New("sentinel line not found")
	ErrMissingBody       = errors.New("body section not found")
	ErrInputTooLarge     = errors.New("input too large")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// FormatError reports input that is not a well-formed export: bad base64,
// a truncated container, or a document without its sentinel or body.
type FormatError struct {
	Stage  string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("format error at %s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("format error at %s: %s", e.Stage, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// DecryptionError reports a cipher or padding failure. A wrong passphrase
// usually ends up here.
type DecryptionError struct {
	Stage  string
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decrypt %s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("decrypt %s: %s", e.Stage, e.Reason)
}

func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// CapabilityError reports that a required cryptographic primitive is
// missing from the host.
type CapabilityError struct {
	Primitive string
	Err       error
}

func (e *CapabilityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crypto capability unavailable: %s: %v", e.Primitive, e.Err)
	}
	return fmt.Sprintf("crypto capability unavailable: %s", e.Primitive)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// StorageError wraps a failure to persist the converted output.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ErrorCode maps an error to its code.
func ErrorCode(err error) string {
	var (
		formatErr     *FormatError
		decryptErr    *DecryptionError
		capabilityErr *CapabilityError
		storageErr    *StorageError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &capabilityErr):
		return ErrCodeCapability
	case errors.As(err, &decryptErr):
		return ErrCodeDecryption
	case errors.As(err, &formatErr):
		return ErrCodeFormat
	case errors.As(err, &storageErr):
		return ErrCodeStorage
	case errors.Is(err, ErrInvalidConfig):
		return ErrCodeConfig
	default:
		return ErrCodeUnknown
	}
}

// IsWrongPassphrase reports whether err is one of the two signals a wrong
// passphrase produces: a padding failure or a sentinel mismatch.
func IsWrongPassphrase(err error) bool {
	return errors.Is(err, ErrInvalidPadding) || errors.Is(err, ErrMissingSentinel)
}
