package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Metadata is the container information needed to validate and sample a clip.
type Metadata struct {
	Duration float64
	Width    int
	Height   int
}

// Prober reads container metadata without decoding the stream.
type Prober interface {
	Probe(ctx context.Context, path string) (Metadata, error)
}

// FFprobe reads metadata through the ffprobe binary.
type FFprobe struct {
	timeout time.Duration
}

func NewFFprobe(timeout time.Duration) *FFprobe {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FFprobe{timeout: timeout}
}

func (p *FFprobe) Probe(ctx context.Context, path string) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	out, err := ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{"v": "error"})
	if err != nil {
		return Metadata{}, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe([]byte(out))
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

func parseProbe(raw []byte) (Metadata, error) {
	var probe probeOutput
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Metadata{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var meta Metadata
	hasVideo := false
	streamDuration := ""
	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		hasVideo = true
		meta.Width = stream.Width
		meta.Height = stream.Height
		streamDuration = stream.Duration
		break
	}
	if !hasVideo {
		return Metadata{}, errors.New("no video stream")
	}

	duration, ok := parseSeconds(probe.Format.Duration)
	if !ok {
		duration, ok = parseSeconds(streamDuration)
	}
	if !ok {
		return Metadata{}, errors.New("duration unavailable")
	}
	meta.Duration = duration
	return meta, nil
}

func parseSeconds(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
