package domain

import (
	"errors"
	"time"
)

// Generation outcomes as recorded in the history log.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// GenerationRecord is one finished generation attempt.
type GenerationRecord struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	VideoDuration float64   `json:"video_duration_seconds"`
	FrameCount    int       `json:"frame_count"`
	Outcome       string    `json:"outcome"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	Prompt        string    `json:"prompt,omitempty"`
	LatencyMS     int64     `json:"latency_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// ErrorKind names the taxonomy entry an error belongs to.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range []struct {
		target error
		name   string
	}{
		{ErrInvalidFileType, "invalid_file_type"},
		{ErrUnreadableMetadata, "unreadable_metadata"},
		{ErrDurationExceeded, "duration_exceeded"},
		{ErrNoFramesExtracted, "no_frames_extracted"},
		{ErrVideoProcessing, "video_processing"},
		{ErrEmptyFrameSet, "empty_frame_set"},
		{ErrRemoteGeneration, "remote_generation"},
		{ErrNoVideoSelected, "no_video_selected"},
	} {
		if errors.Is(err, k.target) {
			return k.name
		}
	}
	return "unknown"
}
