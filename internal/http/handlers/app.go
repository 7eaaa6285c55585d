package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"videoprompt/internal/domain"
	"videoprompt/internal/session"
)

// SourcePaths resolves a live playable source to the file behind it.
type SourcePaths interface {
	Path(src domain.PlayableSource) (string, error)
}

type App struct {
	Session         *session.Controller
	Sources         SourcePaths
	History         domain.GenerationRepository
	Model           string
	MaxUploadBytes  int64
	GenerateTimeout time.Duration
	Logger          zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
