package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"videoprompt/internal/domain"
	"videoprompt/pkg/zip"
)

// SessionFrames downloads the frames behind the current prompt as a zip.
func (a *App) SessionFrames(w http.ResponseWriter, r *http.Request) {
	frames, ok := a.Session.Frames()
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "no generated prompt")
		return
	}
	raw, err := zip.Archive(FrameEntries(frames, time.Now()))
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: archive frames failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to archive frames")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="frames.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// FrameEntries names frames in sampling order.
func FrameEntries(frames domain.FrameSet, modified time.Time) []zip.Entry {
	entries := make([]zip.Entry, 0, len(frames))
	for i, f := range frames {
		entries = append(entries, zip.Entry{
			Name:     fmt.Sprintf("frame-%02d.jpg", i+1),
			Data:     f.Data,
			Modified: modified,
		})
	}
	return entries
}
