package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoprompt/internal/domain"
)

type fakeSources struct {
	mu       sync.Mutex
	next     int
	live     map[string]bool
	acquired int
	released int
	failOn   error
}

func newFakeSources() *fakeSources {
	return &fakeSources{live: map[string]bool{}}
}

func (f *fakeSources) Acquire(video domain.UploadedVideo) (domain.PlayableSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != nil {
		return domain.PlayableSource{}, f.failOn
	}
	f.next++
	src := domain.PlayableSource{ID: string(rune('a' + f.next)), Key: video.Key, MimeType: video.MimeType}
	f.live[src.ID] = true
	f.acquired++
	return src, nil
}

func (f *fakeSources) Release(src domain.PlayableSource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.live[src.ID] {
		return domain.ErrSourceReleased
	}
	delete(f.live, src.ID)
	f.released++
	return nil
}

func (f *fakeSources) Path(src domain.PlayableSource) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.live[src.ID] {
		return "", domain.ErrSourceReleased
	}
	return "/clips/" + src.Key, nil
}

type fakeProber struct {
	meta  Metadata
	err   error
	calls int
}

func (f *fakeProber) Probe(_ context.Context, _ string) (Metadata, error) {
	f.calls++
	return f.meta, f.err
}

type fakeGrabber struct {
	frame     []byte
	empty     map[int]bool
	failAt    int
	positions []Position
}

func (f *fakeGrabber) Grab(_ context.Context, _ string, pos Position) ([]byte, error) {
	idx := len(f.positions)
	f.positions = append(f.positions, pos)
	if f.failAt > 0 && idx+1 == f.failAt {
		return nil, errors.New("seek error")
	}
	if f.empty[idx] {
		return nil, nil
	}
	return f.frame, nil
}

type memStore struct {
	files   map[string][]byte
	writes  int
	deletes []string
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (m *memStore) Write(_ context.Context, key string, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	m.writes++
	m.files[key] = data
	return key, int64(len(data)), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	delete(m.files, key)
	return nil
}

func pngFrame(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSeekTimestamps(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, SeekTimestamps(7.0, 8))
	assert.Equal(t, []float64{0, 2, 4, 6}, SeekTimestamps(6.0, 4))
	assert.Equal(t, []float64{0, 9.3}, SeekTimestamps(9.3, 2))
	assert.Nil(t, SeekTimestamps(5, 1))

	ts := SeekTimestamps(10.37, 8)
	require.Len(t, ts, 8)
	assert.Equal(t, 0.0, ts[0])
	assert.Equal(t, 10.37, ts[7])
	for i := 1; i < len(ts); i++ {
		assert.Greater(t, ts[i], ts[i-1])
		assert.InDelta(t, 10.37/7, ts[i]-ts[i-1], 1e-9)
	}
}

func TestPositionClamp(t *testing.T) {
	assert.Equal(t, 0.0, Position{At: 0, Duration: 6}.clamp(0.05))
	assert.Equal(t, 3.0, Position{At: 3, Duration: 6}.clamp(0.05))
	assert.InDelta(t, 5.95, Position{At: 6, Duration: 6}.clamp(0.05), 1e-9)
	assert.Equal(t, 0.0, Position{At: 0.01, Duration: 0.02}.clamp(0.05))
}

func TestSamplerSequentialOrderAndRelease(t *testing.T) {
	sources := newFakeSources()
	prober := &fakeProber{meta: Metadata{Duration: 7, Width: 16, Height: 12}}
	grabber := &fakeGrabber{frame: pngFrame(t, 16, 12)}
	sampler := NewSampler(sources, prober, grabber, SamplerOptions{Logger: zerolog.Nop()})

	frames, err := sampler.Sample(context.Background(), domain.UploadedVideo{Key: "uploads/a.mp4"}, 8)
	require.NoError(t, err)
	require.Len(t, frames, 8)

	require.Len(t, grabber.positions, 8)
	for i, pos := range grabber.positions {
		assert.Equal(t, float64(i), pos.At)
		assert.Equal(t, 7.0, pos.Duration)
	}
	for _, frame := range frames {
		assert.Equal(t, domain.FrameMimeType, frame.MimeType)
		img, err := jpeg.Decode(bytes.NewReader(frame.Data))
		require.NoError(t, err)
		assert.Equal(t, 16, img.Bounds().Dx())
		assert.Equal(t, 12, img.Bounds().Dy())
	}
	assert.Equal(t, 1, sources.acquired)
	assert.Equal(t, 1, sources.released)
	assert.Empty(t, sources.live)
}

func TestSamplerSkipsEmptyFrames(t *testing.T) {
	sources := newFakeSources()
	prober := &fakeProber{meta: Metadata{Duration: 3.5, Width: 8, Height: 8}}
	grabber := &fakeGrabber{frame: pngFrame(t, 8, 8), empty: map[int]bool{2: true, 7: true}}
	sampler := NewSampler(sources, prober, grabber, SamplerOptions{Logger: zerolog.Nop()})

	frames, err := sampler.Sample(context.Background(), domain.UploadedVideo{Key: "uploads/a.mp4"}, 8)
	require.NoError(t, err)
	assert.Len(t, frames, 6)
	assert.Len(t, grabber.positions, 8)
	assert.Equal(t, 1, sources.released)
}

func TestSamplerStrictFailsOnEmptyFrame(t *testing.T) {
	sources := newFakeSources()
	prober := &fakeProber{meta: Metadata{Duration: 3.5, Width: 8, Height: 8}}
	grabber := &fakeGrabber{frame: pngFrame(t, 8, 8), empty: map[int]bool{2: true}}
	sampler := NewSampler(sources, prober, grabber, SamplerOptions{Strict: true, Logger: zerolog.Nop()})

	frames, err := sampler.Sample(context.Background(), domain.UploadedVideo{Key: "uploads/a.mp4"}, 8)
	require.ErrorIs(t, err, domain.ErrVideoProcessing)
	assert.Nil(t, frames)
	assert.Len(t, grabber.positions, 3)
	assert.Equal(t, 1, sources.released)
}

func TestSamplerNoFramesExtracted(t *testing.T) {
	sources := newFakeSources()
	prober := &fakeProber{meta: Metadata{Duration: 2, Width: 8, Height: 8}}
	grabber := &fakeGrabber{frame: nil}
	sampler := NewSampler(sources, prober, grabber, SamplerOptions{Logger: zerolog.Nop()})

	_, err := sampler.Sample(context.Background(), domain.UploadedVideo{Key: "uploads/a.mp4"}, 4)
	require.ErrorIs(t, err, domain.ErrNoFramesExtracted)
	assert.Equal(t, 1, sources.released)
}

func TestSamplerUndecodableFrameIsSkipped(t *testing.T) {
	sources := newFakeSources()
	prober := &fakeProber{meta: Metadata{Duration: 2, Width: 8, Height: 8}}
	grabber := &fakeGrabber{frame: []byte("not an image")}
	sampler := NewSampler(sources, prober, grabber, SamplerOptions{Logger: zerolog.Nop()})

	_, err := sampler.Sample(context.Background(), domain.UploadedVideo{Key: "uploads/a.mp4"}, 3)
	require.ErrorIs(t, err, domain.ErrNoFramesExtracted)
}

func TestSamplerVideoLevelFailures(t *testing.T) {
	tests := []struct {
		name    string
		prober  *fakeProber
		grabber *fakeGrabber
	}{
		{
			name:    "load error",
			prober:  &fakeProber{err: errors.New("moov atom not found")},
			grabber: &fakeGrabber{},
		},
		{
			name:    "seek error",
			prober:  &fakeProber{meta: Metadata{Duration: 5, Width: 8, Height: 8}},
			grabber: &fakeGrabber{failAt: 4},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sources := newFakeSources()
			tc.grabber.frame = pngFrame(t, 8, 8)
			sampler := NewSampler(sources, tc.prober, tc.grabber, SamplerOptions{Logger: zerolog.Nop()})

			frames, err := sampler.Sample(context.Background(), domain.UploadedVideo{Key: "uploads/a.mp4"}, 8)
			require.ErrorIs(t, err, domain.ErrVideoProcessing)
			assert.Nil(t, frames)
			assert.Equal(t, 1, sources.acquired)
			assert.Equal(t, 1, sources.released)
		})
	}
}

func TestSamplerRejectsSmallCount(t *testing.T) {
	sources := newFakeSources()
	sampler := NewSampler(sources, &fakeProber{}, &fakeGrabber{}, SamplerOptions{Logger: zerolog.Nop()})
	_, err := sampler.Sample(context.Background(), domain.UploadedVideo{Key: "uploads/a.mp4"}, 1)
	require.ErrorIs(t, err, domain.ErrVideoProcessing)
	assert.Zero(t, sources.acquired)
}

func TestValidatorRejectsNonVideoWithoutProbing(t *testing.T) {
	store := newMemStore()
	sources := newFakeSources()
	prober := &fakeProber{meta: Metadata{Duration: 1}}
	v := NewValidator(store, sources, prober, 0, zerolog.Nop())

	_, err := v.Validate(context.Background(), domain.Upload{
		Filename: "notes.txt",
		MimeType: "text/plain",
		Body:     strings.NewReader("hello"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidFileType)
	assert.Zero(t, prober.calls)
	assert.Zero(t, store.writes)
	assert.Zero(t, sources.acquired)
}

func TestValidatorAcceptsShortClip(t *testing.T) {
	store := newMemStore()
	sources := newFakeSources()
	prober := &fakeProber{meta: Metadata{Duration: 6, Width: 640, Height: 360}}
	v := NewValidator(store, sources, prober, 0, zerolog.Nop())

	video, err := v.Validate(context.Background(), domain.Upload{
		Filename: "clip.MP4",
		MimeType: "video/mp4",
		Body:     strings.NewReader("video-bytes"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(video.Key, "uploads/"))
	assert.True(t, strings.HasSuffix(video.Key, ".mp4"))
	assert.Equal(t, "clip.MP4", video.Filename)
	assert.Equal(t, int64(len("video-bytes")), video.Size)
	assert.Equal(t, 6.0, video.Duration)
	assert.Equal(t, 640, video.Width)
	assert.Equal(t, 360, video.Height)
	assert.Contains(t, store.files, video.Key)
	assert.Empty(t, store.deletes)
	assert.Equal(t, 1, sources.acquired)
	assert.Equal(t, 1, sources.released)
}

func TestValidatorBoundary(t *testing.T) {
	store := newMemStore()
	sources := newFakeSources()
	prober := &fakeProber{meta: Metadata{Duration: 10.5}}
	v := NewValidator(store, sources, prober, DefaultMaxDuration, zerolog.Nop())

	_, err := v.Validate(context.Background(), domain.Upload{MimeType: "video/webm", Body: strings.NewReader("x")})
	require.NoError(t, err)
}

func TestValidatorRejectsLongClip(t *testing.T) {
	store := newMemStore()
	sources := newFakeSources()
	prober := &fakeProber{meta: Metadata{Duration: 12.04}}
	v := NewValidator(store, sources, prober, 0, zerolog.Nop())

	_, err := v.Validate(context.Background(), domain.Upload{
		Filename: "long.mov",
		MimeType: "video/quicktime",
		Body:     strings.NewReader("video-bytes"),
	})
	require.ErrorIs(t, err, domain.ErrDurationExceeded)
	var tooLong *domain.DurationExceededError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, 12.04, tooLong.Duration)
	assert.Contains(t, err.Error(), "12.0")
	assert.Len(t, store.deletes, 1)
	assert.Empty(t, store.files)
	assert.Equal(t, 1, sources.released)
}

func TestValidatorUnreadableMetadata(t *testing.T) {
	store := newMemStore()
	sources := newFakeSources()
	prober := &fakeProber{err: errors.New("invalid data found when processing input")}
	v := NewValidator(store, sources, prober, 0, zerolog.Nop())

	_, err := v.Validate(context.Background(), domain.Upload{MimeType: "video/mp4", Body: strings.NewReader("garbage")})
	require.ErrorIs(t, err, domain.ErrUnreadableMetadata)
	assert.NotErrorIs(t, err, domain.ErrDurationExceeded)
	assert.Len(t, store.deletes, 1)
	assert.Equal(t, 1, sources.acquired)
	assert.Equal(t, 1, sources.released)
}

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Metadata
		wantErr bool
	}{
		{
			name: "format duration",
			raw:  `{"format":{"duration":"6.040000"},"streams":[{"codec_type":"audio"},{"codec_type":"video","width":1280,"height":720}]}`,
			want: Metadata{Duration: 6.04, Width: 1280, Height: 720},
		},
		{
			name: "stream duration fallback",
			raw:  `{"format":{"duration":"N/A"},"streams":[{"codec_type":"video","width":320,"height":240,"duration":"4.5"}]}`,
			want: Metadata{Duration: 4.5, Width: 320, Height: 240},
		},
		{
			name:    "no video stream",
			raw:     `{"format":{"duration":"3.0"},"streams":[{"codec_type":"audio"}]}`,
			wantErr: true,
		},
		{
			name:    "no duration",
			raw:     `{"format":{},"streams":[{"codec_type":"video","width":1,"height":1}]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `moov atom not found`,
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseProbe([]byte(tc.raw))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRasterize(t *testing.T) {
	out, err := rasterize(nil, 8, 8, 80)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = rasterize([]byte("junk"), 8, 8, 80)
	require.Error(t, err)

	out, err = rasterize(pngFrame(t, 10, 6), 0, 0, 0)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 6), img.Bounds())
}

func TestRasterizeScalesMismatchedPicture(t *testing.T) {
	// A portrait 8x16 picture decoded from a stream probed as 16x8.
	white := image.NewRGBA(image.Rect(0, 0, 8, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 8; x++ {
			white.Set(x, y, color.White)
		}
	}
	var raw bytes.Buffer
	require.NoError(t, png.Encode(&raw, white))

	out, err := rasterize(raw.Bytes(), 16, 8, 80)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())

	for _, pt := range []image.Point{{1, 1}, {8, 4}, {14, 4}, {15, 7}} {
		r, g, b, _ := img.At(pt.X, pt.Y).RGBA()
		assert.Greater(t, r>>8, uint32(200), "pixel %v red", pt)
		assert.Greater(t, g>>8, uint32(200), "pixel %v green", pt)
		assert.Greater(t, b>>8, uint32(200), "pixel %v blue", pt)
	}
}
