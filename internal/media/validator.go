package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"videoprompt/internal/domain"
	"videoprompt/internal/metrics"
)

// DefaultMaxDuration is the accepted clip length, a 10 second limit plus
// tolerance for container rounding.
const DefaultMaxDuration = 10.5

// Store persists uploaded bytes under a key.
type Store interface {
	Write(ctx context.Context, key string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, key string) error
}

// Validator accepts short video clips.
type Validator struct {
	store       Store
	sources     Sources
	prober      Prober
	maxDuration float64
	logger      zerolog.Logger
}

func NewValidator(store Store, sources Sources, prober Prober, maxDuration float64, logger zerolog.Logger) *Validator {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	return &Validator{
		store:       store,
		sources:     sources,
		prober:      prober,
		maxDuration: maxDuration,
		logger:      logger,
	}
}

// MaxDuration reports the accepted ceiling in seconds.
func (v *Validator) MaxDuration() float64 { return v.maxDuration }

// Validate stores the upload and checks its container metadata. Non-video
// uploads are rejected before anything is stored or probed. Rejected uploads
// are removed from the store.
func (v *Validator) Validate(ctx context.Context, upload domain.Upload) (video domain.UploadedVideo, err error) {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("validate").Observe(time.Since(start).Seconds())
		metrics.ValidationsTotal.WithLabelValues(validationOutcome(err)).Inc()
	}()

	if !upload.IsVideo() {
		return domain.UploadedVideo{}, domain.ErrInvalidFileType
	}
	if upload.Body == nil {
		return domain.UploadedVideo{}, fmt.Errorf("%w: empty upload body", domain.ErrUnreadableMetadata)
	}

	key, size, err := v.store.Write(ctx, uploadKey(upload.Filename), upload.Body)
	if err != nil {
		v.logger.Error().Err(err).Str("filename", upload.Filename).Msg("validator: store upload failed")
		return domain.UploadedVideo{}, fmt.Errorf("%w: %w", domain.ErrUnreadableMetadata, err)
	}
	video = domain.UploadedVideo{
		Key:      key,
		Filename: upload.Filename,
		MimeType: upload.MimeType,
		Size:     size,
	}
	defer func() {
		if err == nil {
			return
		}
		if delErr := v.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			v.logger.Warn().Err(delErr).Str("key", key).Msg("validator: remove rejected upload failed")
		}
	}()

	meta, err := v.probe(ctx, video)
	if err != nil {
		v.logger.Warn().Err(err).Str("key", key).Msg("validator: unreadable metadata")
		return domain.UploadedVideo{}, fmt.Errorf("%w: %w", domain.ErrUnreadableMetadata, err)
	}
	if meta.Duration > v.maxDuration {
		return domain.UploadedVideo{}, &domain.DurationExceededError{Duration: meta.Duration, Limit: v.maxDuration}
	}

	video.Duration = meta.Duration
	video.Width = meta.Width
	video.Height = meta.Height
	return video, nil
}

// probe reads metadata through a temporary source that is released before
// returning.
func (v *Validator) probe(ctx context.Context, video domain.UploadedVideo) (Metadata, error) {
	src, err := v.sources.Acquire(video)
	if err != nil {
		return Metadata{}, err
	}
	defer func() {
		if relErr := v.sources.Release(src); relErr != nil {
			v.logger.Warn().Err(relErr).Str("source_id", src.ID).Msg("validator: release probe source failed")
		}
	}()
	path, err := v.sources.Path(src)
	if err != nil {
		return Metadata{}, err
	}
	return v.prober.Probe(ctx, path)
}

func uploadKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return "uploads/" + uuid.NewString() + ext
}

func validationOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, domain.ErrInvalidFileType):
		return "invalid_type"
	case errors.Is(err, domain.ErrDurationExceeded):
		return "too_long"
	default:
		return "unreadable"
	}
}
