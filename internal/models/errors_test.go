package models_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheMichaelB/pwexport/internal/models"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  *models.FormatError
		want string
	}{
		{
			name: "with cause",
			err: &models.FormatError{
				Stage:  "container",
				Reason: "too short",
				Err:    models.ErrInvalidContainer,
			},
			want: "format error at container: too short: invalid container",
		},
		{
			name: "without cause",
			err: &models.FormatError{
				Stage:  "body",
				Reason: "no rows",
			},
			want: "format error at body: no rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestDecryptionError(t *testing.T) {
	err := &models.DecryptionError{
		Stage:  "padding",
		Reason: "length 0",
		Err:    models.ErrInvalidPadding,
	}

	assert.Equal(t, "decrypt padding: length 0: invalid padding", err.Error())
	assert.ErrorIs(t, err, models.ErrInvalidPadding)
	assert.Equal(t, "decrypt padding: length 0", (&models.DecryptionError{Stage: "padding", Reason: "length 0"}).Error())
}

func TestCapabilityError(t *testing.T) {
	cause := errors.New("not linked")
	err := &models.CapabilityError{Primitive: "sha256", Err: cause}

	assert.Equal(t, "crypto capability unavailable: sha256: not linked", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "crypto capability unavailable: aes", (&models.CapabilityError{Primitive: "aes"}).Error())
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := &models.StorageError{Path: "out.csv", Err: cause}

	assert.Equal(t, "save out.csv: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"format", &models.FormatError{Stage: "decode"}, models.ErrCodeFormat},
		{"wrapped format", fmt.Errorf("extract: %w", &models.FormatError{Stage: "sentinel"}), models.ErrCodeFormat},
		{"decryption", fmt.Errorf("unwrap: %w", &models.DecryptionError{Stage: "padding"}), models.ErrCodeDecryption},
		{"capability", &models.CapabilityError{Primitive: "aes"}, models.ErrCodeCapability},
		{"storage", &models.StorageError{Path: "x", Err: errors.New("boom")}, models.ErrCodeStorage},
		{"config", fmt.Errorf("%w: bad level", models.ErrInvalidConfig), models.ErrCodeConfig},
		{"unknown", errors.New("something else"), models.ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ErrorCode(tt.err))
		})
	}
}

func TestIsWrongPassphrase(t *testing.T) {
	padding := fmt.Errorf("unwrap: %w", &models.DecryptionError{Stage: "padding", Err: models.ErrInvalidPadding})
	sentinel := fmt.Errorf("extract: %w", &models.FormatError{Stage: "sentinel", Err: models.ErrMissingSentinel})
	truncated := &models.FormatError{Stage: "container", Err: models.ErrInvalidContainer}

	assert.True(t, models.IsWrongPassphrase(padding))
	assert.True(t, models.IsWrongPassphrase(sentinel))
	assert.False(t, models.IsWrongPassphrase(truncated))
	assert.False(t, models.IsWrongPassphrase(nil))
}
