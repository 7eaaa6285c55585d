package media

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"videoprompt/internal/domain"
	"videoprompt/internal/metrics"
)

// DefaultFrameCount is the number of frames sent per generation attempt.
const DefaultFrameCount = 8

// Sources hands out revocable references to stored clips.
type Sources interface {
	Acquire(video domain.UploadedVideo) (domain.PlayableSource, error)
	Release(src domain.PlayableSource) error
	Path(src domain.PlayableSource) (string, error)
}

// SeekTimestamps returns n positions evenly spaced over [0, duration],
// inclusive of both ends.
func SeekTimestamps(duration float64, n int) []float64 {
	if n < 2 {
		return nil
	}
	out := make([]float64, n)
	for i := 0; i < n-1; i++ {
		out[i] = float64(i) * duration / float64(n-1)
	}
	out[n-1] = duration
	return out
}

type SamplerOptions struct {
	// Quality is the JPEG quality, 1-100.
	Quality int
	// Strict fails the whole operation when a frame encodes to nothing
	// instead of skipping it.
	Strict bool
	Logger zerolog.Logger
}

// Sampler extracts evenly spaced still frames from an accepted clip.
type Sampler struct {
	sources Sources
	prober  Prober
	grabber Grabber
	quality int
	strict  bool
	logger  zerolog.Logger
}

func NewSampler(sources Sources, prober Prober, grabber Grabber, opts SamplerOptions) *Sampler {
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Sampler{
		sources: sources,
		prober:  prober,
		grabber: grabber,
		quality: quality,
		strict:  opts.Strict,
		logger:  opts.Logger,
	}
}

// Sample grabs n frames from video, one seek at a time, in chronological
// order. Frames that encode to nothing are skipped unless the sampler is
// strict, so the result may be shorter than n.
func (s *Sampler) Sample(ctx context.Context, video domain.UploadedVideo, n int) (frames domain.FrameSet, err error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: frame count must be at least 2, got %d", domain.ErrVideoProcessing, n)
	}
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("sample").Observe(time.Since(start).Seconds())
	}()

	src, err := s.sources.Acquire(video)
	if err != nil {
		s.logger.Error().Err(err).Str("key", video.Key).Msg("sampler: acquire source failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrVideoProcessing, err)
	}
	defer func() {
		if relErr := s.sources.Release(src); relErr != nil {
			s.logger.Warn().Err(relErr).Str("source_id", src.ID).Msg("sampler: release source failed")
		}
	}()

	path, err := s.sources.Path(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVideoProcessing, err)
	}
	meta, err := s.prober.Probe(ctx, path)
	if err != nil {
		s.logger.Error().Err(err).Str("key", video.Key).Msg("sampler: load metadata failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrVideoProcessing, err)
	}

	timestamps := SeekTimestamps(meta.Duration, n)
	frames = make(domain.FrameSet, 0, n)
	extracted, skipped := 0, 0
	for _, at := range timestamps {
		raw, err := s.grabber.Grab(ctx, path, Position{At: at, Duration: meta.Duration})
		if err != nil {
			s.logger.Error().Err(err).Float64("at", at).Str("key", video.Key).Msg("sampler: seek failed")
			return nil, fmt.Errorf("%w: %w", domain.ErrVideoProcessing, err)
		}
		data, encErr := rasterize(raw, meta.Width, meta.Height, s.quality)
		extracted++
		if encErr != nil || len(data) == 0 {
			skipped++
			s.logger.Warn().Err(encErr).Float64("at", at).Int("frame", extracted).Msg("sampler: frame produced no image")
			if s.strict {
				return nil, fmt.Errorf("%w: frame %d at %.3fs produced no image", domain.ErrVideoProcessing, extracted, at)
			}
			continue
		}
		frames = append(frames, domain.Frame{MimeType: domain.FrameMimeType, Data: data})
	}

	metrics.FramesExtractedTotal.Add(float64(len(frames)))
	metrics.FramesSkippedTotal.Add(float64(skipped))
	if len(frames) == 0 {
		return nil, domain.ErrNoFramesExtracted
	}
	s.logger.Debug().
		Str("key", video.Key).
		Float64("duration", meta.Duration).
		Int("requested", n).
		Int("frames", len(frames)).
		Int("skipped", skipped).
		Msg("sampler: frames extracted")
	return frames, nil
}
