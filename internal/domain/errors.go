package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFileType    = errors.New("invalid file type")
	ErrUnreadableMetadata = errors.New("unreadable video metadata")
	ErrDurationExceeded   = errors.New("video duration exceeded")
	ErrNoFramesExtracted  = errors.New("no frames extracted")
	ErrVideoProcessing    = errors.New("video processing failure")
	ErrEmptyFrameSet      = errors.New("empty frame set")
	ErrRemoteGeneration   = errors.New("remote generation failure")
	ErrNoVideoSelected    = errors.New("no video selected")
	ErrBusy               = errors.New("session busy")
	ErrNotReady           = errors.New("no accepted video to generate from")
	ErrSourceReleased     = errors.New("playable source already released")
)

// DurationExceededError reports a clip longer than the accepted ceiling.
// It matches ErrDurationExceeded with errors.Is.
type DurationExceededError struct {
	Duration float64
	Limit    float64
}

func (e *DurationExceededError) Error() string {
	return fmt.Sprintf("video duration %.1fs exceeds limit of %.1fs", e.Duration, e.Limit)
}

func (e *DurationExceededError) Is(target error) bool {
	return target == ErrDurationExceeded
}
