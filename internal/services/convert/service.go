package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/TheMichaelB/pwexport/internal/config"
	"github.com/TheMichaelB/pwexport/internal/crypto"
	"github.com/TheMichaelB/pwexport/internal/events"
	"github.com/TheMichaelB/pwexport/internal/models"
	"github.com/TheMichaelB/pwexport/internal/records"
	"github.com/TheMichaelB/pwexport/internal/storage"
)

// Options control one conversion.
type Options struct {
	AutoPersist        bool
	FilenameOverride   string
	IncludeEmptyFields bool
}

// Result is the outcome of a successful conversion.
type Result struct {
	Text              string        `json:"-"`
	SuggestedFilename string        `json:"filename"`
	RecordCount       int           `json:"records"`
	Succeeded         bool          `json:"success"`
	SavedPath         string        `json:"saved_path,omitempty"`
	Stats             records.Stats `json:"stats"`
}

// Service converts export containers to CSV.
type Service struct {
	cfg    *config.Config
	crypto crypto.Provider
	store  storage.BlobStore
	logger *events.Logger
}

// NewService creates a conversion service. store may be nil when nothing
// is ever persisted.
func NewService(cfg *config.Config, provider crypto.Provider, store storage.BlobStore, logger *events.Logger) *Service {
	return &Service{
		cfg:    cfg,
		crypto: provider,
		store:  store,
		logger: logger.WithField("service", "convert"),
	}
}

// Convert decrypts in with passphrase and renders its records as CSV.
// On failure no result is returned.
func (s *Service) Convert(ctx context.Context, in Input, passphrase string, opts Options) (*Result, error) {
	logger := s.logger.WithField("input", in.Name)
	if id := events.GetConversionID(ctx); id != "" {
		logger = logger.WithField("conversion_id", id)
	}

	if err := s.crypto.CheckCapability(); err != nil {
		logger.WithError(err).Error("Crypto capability check failed")
		return nil, fmt.Errorf("check capability: %w", err)
	}

	if int64(len(in.Data)) > s.cfg.Convert.MaxInputSize {
		return nil, &models.FormatError{
			Stage:  "input",
			Reason: fmt.Sprintf("%d bytes exceeds limit of %d", len(in.Data), s.cfg.Convert.MaxInputSize),
			Err:    models.ErrInputTooLarge,
		}
	}

	text, err := decodeText(in.Data)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	logger.WithField("size", len(text)).Debug("Unwrapping container")

	plaintext, err := s.crypto.Unwrap(text, passphrase)
	if err != nil {
		logger.WithField("code", models.ErrorCode(err)).Debug("Unwrap failed")
		return nil, fmt.Errorf("unwrap: %w", err)
	}
	defer clear(plaintext)

	recs, stats, err := records.ExtractWithStats(string(plaintext), opts.IncludeEmptyFields)
	if err != nil {
		logger.WithField("code", models.ErrorCode(err)).Debug("Extract failed")
		return nil, fmt.Errorf("extract: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"rows":            stats.Rows,
		"kept":            stats.Kept,
		"short":           stats.Short,
		"empty":           stats.Empty,
		"field_fallbacks": stats.FieldFallbacks,
	}).Debug("Records extracted")

	table := records.NewTable(recs)
	result := &Result{
		Text:              table.CSV(),
		SuggestedFilename: SuggestFilename(in.Name, opts.FilenameOverride),
		RecordCount:       table.Len(),
		Stats:             stats,
	}

	if opts.AutoPersist {
		saved, err := s.persist(result)
		if err != nil {
			return nil, err
		}
		result.SavedPath = saved
	}

	result.Succeeded = true

	logger.WithFields(map[string]interface{}{
		"records":  result.RecordCount,
		"filename": result.SuggestedFilename,
		"saved":    result.SavedPath != "",
	}).Info("Conversion complete")

	return result, nil
}

func (s *Service) persist(result *Result) (string, error) {
	if s.store == nil {
		return "", &models.StorageError{
			Path: result.SuggestedFilename,
			Err:  errors.New("no output store configured"),
		}
	}

	saved, err := s.store.Write(result.SuggestedFilename, []byte(result.Text), 0600)
	if errors.Is(err, storage.ErrSkipped) {
		s.logger.WithField("path", saved).Warn("Output exists, not overwritten")
		return "", nil
	}
	if err != nil {
		return "", &models.StorageError{Path: result.SuggestedFilename, Err: err}
	}

	return saved, nil
}

// IsLikelySourceFile reports whether meta looks like an export container.
// Advisory only.
func (s *Service) IsLikelySourceFile(meta models.FileMetadata) bool {
	return models.IsLikelySourceFile(meta)
}

// CapabilityAvailable reports whether this host can decrypt containers.
func (s *Service) CapabilityAvailable() bool {
	return s.crypto.CheckCapability() == nil
}
