package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"videoprompt/internal/domain"
	"videoprompt/internal/middleware"
	"videoprompt/internal/session"
)

const multipartMemory = 8 << 20

func (a *App) view(r *http.Request, st session.State) session.View {
	return session.Describe(st, middleware.LocaleFromContext(r.Context()))
}

func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.view(r, a.Session.Snapshot()))
}

// SessionSelectVideo accepts a multipart upload in the "video" field.
func (a *App) SessionSelectVideo(w http.ResponseWriter, r *http.Request) {
	if a.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds the size limit")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "expected multipart form data")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("video")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "missing video file")
		return
	}
	defer file.Close()

	upload := domain.Upload{
		Filename: filepath.Base(header.Filename),
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Body:     file,
	}
	st := a.Session.SelectFile(context.WithoutCancel(r.Context()), upload)
	a.json(w, http.StatusOK, a.view(r, st))
}

// SessionGenerate runs sampling and the model request. A disconnecting client
// does not cancel the attempt.
func (a *App) SessionGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	if a.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.GenerateTimeout)
		defer cancel()
	}
	st, err := a.Session.Generate(ctx)
	switch {
	case errors.Is(err, domain.ErrBusy), errors.Is(err, domain.ErrNotReady):
		a.json(w, http.StatusConflict, a.view(r, st))
	case err != nil:
		a.Logger.Error().Err(err).Msg("handlers: generate failed")
		a.error(w, http.StatusInternalServerError, "internal", "generation failed")
	default:
		a.json(w, http.StatusOK, a.view(r, st))
	}
}

// SessionVideo streams the accepted clip for playback.
func (a *App) SessionVideo(w http.ResponseWriter, r *http.Request) {
	src, ok := a.Session.Source()
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "no video is loaded")
		return
	}
	path, err := a.Sources.Path(src)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "no video is loaded")
		return
	}
	f, err := os.Open(path)
	if err != nil {
		a.Logger.Warn().Err(err).Str("source_id", src.ID).Msg("handlers: open playable source failed")
		a.error(w, http.StatusNotFound, "not_found", "no video is loaded")
		return
	}
	defer f.Close()

	modTime := time.Time{}
	if info, err := f.Stat(); err == nil {
		modTime = info.ModTime()
	}
	if src.MimeType != "" {
		w.Header().Set("Content-Type", src.MimeType)
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, filepath.Base(path), modTime, f)
}

// SessionReset releases the loaded video and returns to idle.
func (a *App) SessionReset(w http.ResponseWriter, r *http.Request) {
	a.Session.Close(context.WithoutCancel(r.Context()))
	a.json(w, http.StatusOK, a.view(r, a.Session.Snapshot()))
}
