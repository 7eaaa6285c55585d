package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"videoprompt/internal/domain"
	"videoprompt/internal/metrics"
)

type Validator interface {
	Validate(ctx context.Context, upload domain.Upload) (domain.UploadedVideo, error)
}

type Sampler interface {
	Sample(ctx context.Context, video domain.UploadedVideo, n int) (domain.FrameSet, error)
}

type Requester interface {
	GeneratePrompt(ctx context.Context, frames domain.FrameSet) (domain.GeneratedPrompt, error)
}

// Sources hands out the playable reference for an accepted video.
type Sources interface {
	Acquire(video domain.UploadedVideo) (domain.PlayableSource, error)
	Release(src domain.PlayableSource) error
}

// Uploads removes stored bytes of superseded videos.
type Uploads interface {
	Delete(ctx context.Context, key string) error
}

// GenerationLog records finished generation attempts.
type GenerationLog interface {
	Record(ctx context.Context, rec domain.GenerationRecord) error
}

// Observer is notified of every transition while the controller lock is held.
// It must not call back into the controller.
type Observer func(from, to Kind)

type Options struct {
	FrameCount int
	Logger     zerolog.Logger
	History    GenerationLog
	Observers  []Observer
}

// Controller owns the single session: the current state, the accepted video
// and its playable source.
type Controller struct {
	validator  Validator
	sampler    Sampler
	requester  Requester
	sources    Sources
	uploads    Uploads
	frameCount int
	history    GenerationLog
	logger     zerolog.Logger

	mu        sync.Mutex
	state     State
	token     string
	observers []Observer
}

func NewController(validator Validator, sampler Sampler, requester Requester, sources Sources, uploads Uploads, opts Options) *Controller {
	frameCount := opts.FrameCount
	if frameCount < 2 {
		frameCount = 8
	}
	return &Controller{
		validator:  validator,
		sampler:    sampler,
		requester:  requester,
		sources:    sources,
		uploads:    uploads,
		frameCount: frameCount,
		history:    opts.History,
		logger:     opts.Logger,
		state:      Idle{},
		observers:  append([]Observer(nil), opts.Observers...),
	}
}

// Observe registers fn for future transitions.
func (c *Controller) Observe(fn Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Source returns the playable source of the accepted video, if one is live.
func (c *Controller) Source() (domain.PlayableSource, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state.(type) {
	case Ready, Generating, Success:
		_, src, ok := held(c.state)
		return src, ok
	}
	return domain.PlayableSource{}, false
}

// Frames returns the frames behind the current prompt.
func (c *Controller) Frames() (domain.FrameSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.state.(Success)
	if !ok {
		return nil, false
	}
	return s.Frames, true
}

// SelectFile replaces the current video with upload. It is accepted in any
// state; an in-flight validation or generation for an earlier selection has
// its result discarded.
func (c *Controller) SelectFile(ctx context.Context, upload domain.Upload) State {
	c.mu.Lock()
	token := c.begin()
	c.releaseHeld(ctx)
	c.transition(Validating{Filename: upload.Filename})
	c.mu.Unlock()

	video, err := c.validator.Validate(ctx, upload)
	var src domain.PlayableSource
	if err == nil {
		src, err = c.sources.Acquire(video)
		if err != nil {
			c.logger.Error().Err(err).Str("key", video.Key).Msg("session: acquire playable source failed")
			c.deleteUpload(ctx, video.Key)
			err = domain.ErrVideoProcessing
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != token {
		metrics.StaleResultsTotal.WithLabelValues("validate").Inc()
		c.logger.Debug().Str("filename", upload.Filename).Msg("session: discarding superseded validation")
		if err == nil {
			c.release(src)
			c.deleteUpload(ctx, video.Key)
		}
		return c.state
	}
	if err != nil {
		c.logger.Info().Err(err).Str("filename", upload.Filename).Msg("session: video rejected")
		c.transition(Failed{Err: err})
		return c.state
	}
	c.transition(Ready{Video: video, Source: src})
	return c.state
}

// Generate samples the accepted video and asks the model for a prompt. It
// returns domain.ErrBusy without a state change while another step runs and
// domain.ErrNotReady after a failed generation.
func (c *Controller) Generate(ctx context.Context) (State, error) {
	c.mu.Lock()
	var (
		video domain.UploadedVideo
		src   domain.PlayableSource
	)
	switch s := c.state.(type) {
	case Ready:
		video, src = s.Video, s.Source
	case Success:
		video, src = s.Video, s.Source
	case Validating, Generating:
		st := c.state
		c.mu.Unlock()
		return st, domain.ErrBusy
	case Failed:
		if s.Video != nil {
			st := c.state
			c.mu.Unlock()
			return st, domain.ErrNotReady
		}
		c.transition(Failed{Err: domain.ErrNoVideoSelected})
		st := c.state
		c.mu.Unlock()
		return st, nil
	default:
		c.transition(Failed{Err: domain.ErrNoVideoSelected})
		st := c.state
		c.mu.Unlock()
		return st, nil
	}
	token := c.begin()
	c.transition(Generating{Video: video, Source: src})
	c.mu.Unlock()

	start := time.Now()
	frames, err := c.sampler.Sample(ctx, video, c.frameCount)
	var prompt domain.GeneratedPrompt
	if err == nil {
		prompt, err = c.requester.GeneratePrompt(ctx, frames)
	}
	latency := time.Since(start)
	c.record(ctx, video, len(frames), prompt, err, latency)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != token {
		metrics.StaleResultsTotal.WithLabelValues("generate").Inc()
		c.logger.Debug().Str("key", video.Key).Msg("session: discarding superseded generation")
		return c.state, nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", video.Key).Dur("latency", latency).Msg("session: generation failed")
		c.transition(Failed{Err: err, Video: &video, Source: &src})
		return c.state, nil
	}
	c.transition(Success{Video: video, Source: src, Frames: frames, Prompt: prompt})
	return c.state, nil
}

// Close releases the held video and returns the session to idle.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.begin()
	c.releaseHeld(ctx)
	c.transition(Idle{})
}

// begin starts a new attempt; results carrying older tokens are stale.
func (c *Controller) begin() string {
	c.token = uuid.NewString()
	return c.token
}

func (c *Controller) transition(to State) {
	from := c.state.Kind()
	c.state = to
	for _, obs := range c.observers {
		obs(from, to.Kind())
	}
}

func (c *Controller) releaseHeld(ctx context.Context) {
	video, src, ok := held(c.state)
	if !ok {
		return
	}
	c.release(src)
	c.deleteUpload(ctx, video.Key)
}

func (c *Controller) release(src domain.PlayableSource) {
	if err := c.sources.Release(src); err != nil {
		c.logger.Warn().Err(err).Str("source_id", src.ID).Msg("session: release source failed")
	}
}

func (c *Controller) deleteUpload(ctx context.Context, key string) {
	if c.uploads == nil || key == "" {
		return
	}
	if err := c.uploads.Delete(context.WithoutCancel(ctx), key); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("session: delete upload failed")
	}
}

func (c *Controller) record(ctx context.Context, video domain.UploadedVideo, frames int, prompt domain.GeneratedPrompt, err error, latency time.Duration) {
	outcome := domain.OutcomeSuccess
	if err != nil {
		outcome = domain.OutcomeFailed
	}
	metrics.GenerationsTotal.WithLabelValues(outcome).Inc()
	if c.history == nil {
		return
	}
	rec := domain.GenerationRecord{
		ID:            uuid.NewString(),
		Filename:      video.Filename,
		VideoDuration: video.Duration,
		FrameCount:    frames,
		Outcome:       outcome,
		ErrorKind:     domain.ErrorKind(err),
		Prompt:        string(prompt),
		LatencyMS:     latency.Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}
	if recErr := c.history.Record(context.WithoutCancel(ctx), rec); recErr != nil {
		c.logger.Warn().Err(recErr).Msg("session: record generation failed")
	}
}
