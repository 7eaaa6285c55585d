package media

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Position is a seek target within a clip of the given duration.
type Position struct {
	At       float64
	Duration float64
}

// clamp keeps the target inside the decodable range. Decoders return nothing
// when asked for the exact end of a stream, so the final position backs off
// by guard seconds.
func (p Position) clamp(guard float64) float64 {
	at := p.At
	if p.Duration > 0 && at > p.Duration-guard {
		at = p.Duration - guard
	}
	if at < 0 {
		at = 0
	}
	return at
}

// Grabber seeks to a position and returns the decoded picture as PNG bytes.
// An empty result without error means no picture was available there.
type Grabber interface {
	Grab(ctx context.Context, path string, pos Position) ([]byte, error)
}

// FFmpegGrabber decodes a single frame per call with ffmpeg.
type FFmpegGrabber struct {
	ffmpegPath string
	endGuard   float64
}

func NewFFmpegGrabber(ffmpegPath string) *FFmpegGrabber {
	return &FFmpegGrabber{ffmpegPath: strings.TrimSpace(ffmpegPath), endGuard: 0.05}
}

func (g *FFmpegGrabber) Grab(ctx context.Context, path string, pos Position) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	at := pos.clamp(g.endGuard)

	var out, stderr bytes.Buffer
	stream := ffmpeg.Input(path, ffmpeg.KwArgs{"ss": strconv.FormatFloat(at, 'f', 3, 64)}).
		Output("pipe:", ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "png"}).
		WithOutput(&out).
		WithErrorOutput(&stderr)
	if g.ffmpegPath != "" {
		stream = stream.SetFfmpegPath(g.ffmpegPath)
	}
	stream.Context = ctx

	if err := stream.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg seek %.3fs: %w, output: %s", at, err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
