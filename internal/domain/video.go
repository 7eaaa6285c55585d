package domain

import (
	"io"
	"strings"
)

// FrameMimeType is the encoding of every sampled frame.
const FrameMimeType = "image/jpeg"

// Upload is a candidate file as handed over by the client.
type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Body     io.Reader
}

// IsVideo reports whether the declared media type is a video type.
func (u Upload) IsVideo() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(u.MimeType)), "video/")
}

// UploadedVideo is an accepted clip. Key addresses its bytes in the file store.
type UploadedVideo struct {
	Key      string  `json:"-"`
	Filename string  `json:"filename"`
	MimeType string  `json:"mime_type"`
	Size     int64   `json:"size"`
	Duration float64 `json:"duration_seconds"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// PlayableSource is a revocable reference to the bytes of an UploadedVideo.
type PlayableSource struct {
	ID       string
	Key      string
	MimeType string
}

// Frame is one still image sampled from a clip.
type Frame struct {
	MimeType string
	Data     []byte
}

// FrameSet is ordered chronologically; no timestamps are kept.
type FrameSet []Frame

// GeneratedPrompt is the terminal artifact of a generation attempt.
type GeneratedPrompt string
