package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestMessageNormalizesErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "invalid type", err: ErrInvalidFileType, want: MsgInvalidFileType},
		{name: "unreadable", err: fmt.Errorf("probe: %w", ErrUnreadableMetadata), want: MsgUnreadableMetadata},
		{name: "processing", err: ErrVideoProcessing, want: MsgVideoProcessing},
		{name: "no frames", err: ErrNoFramesExtracted, want: MsgNoFramesExtracted},
		{name: "empty set", err: ErrEmptyFrameSet, want: MsgEmptyFrameSet},
		{name: "remote", err: ErrRemoteGeneration, want: MsgRemoteGeneration},
		{name: "no video", err: ErrNoVideoSelected, want: MsgNoVideoSelected},
		{name: "unknown", err: errors.New("boom"), want: MsgUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Message(tc.err, language.English); got != tc.want {
				t.Fatalf("Message() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMessageDurationExceededReportsOneDecimal(t *testing.T) {
	err := fmt.Errorf("validate: %w", &DurationExceededError{Duration: 12.0, Limit: 10.5})
	if !errors.Is(err, ErrDurationExceeded) {
		t.Fatal("expected errors.Is to match ErrDurationExceeded")
	}
	got := Message(err, language.English)
	if !strings.Contains(got, "12.0") {
		t.Fatalf("Message() = %q, want it to contain 12.0", got)
	}
	if !strings.Contains(got, "Max 10 seconds") {
		t.Fatalf("Message() = %q, want the 10 second ceiling", got)
	}
}

func TestMessageDurationExceededHasNoDigitGrouping(t *testing.T) {
	err := &DurationExceededError{Duration: 1234.56, Limit: 10.5}
	tests := []struct {
		tag  language.Tag
		want string
	}{
		{tag: language.English, want: "Video is too long (1234.6s). Max 10 seconds allowed."},
		{tag: language.Indonesian, want: "Video terlalu panjang (1234.6 dtk). Maksimal 10 detik."},
	}
	for _, tc := range tests {
		if got := Message(err, tc.tag); got != tc.want {
			t.Fatalf("Message(%s) = %q, want %q", tc.tag, got, tc.want)
		}
	}
}

func TestMessageIndonesian(t *testing.T) {
	if got := Message(ErrInvalidFileType, language.Indonesian); got != indonesian[MsgInvalidFileType] {
		t.Fatalf("Message() = %q, want %q", got, indonesian[MsgInvalidFileType])
	}
}

func TestMessageNil(t *testing.T) {
	if got := Message(nil, language.English); got != "" {
		t.Fatalf("Message(nil) = %q, want empty", got)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: &DurationExceededError{Duration: 11, Limit: 10.5}, want: "duration_exceeded"},
		{err: fmt.Errorf("%w: ffmpeg exited 1", ErrVideoProcessing), want: "video_processing"},
		{err: ErrRemoteGeneration, want: "remote_generation"},
		{err: errors.New("boom"), want: "unknown"},
	}
	for _, tc := range tests {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
