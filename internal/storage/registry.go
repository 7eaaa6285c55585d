package storage

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"videoprompt/internal/domain"
	"videoprompt/internal/metrics"
)

// Registry hands out revocable references to stored clips. A reference is
// usable until it is released; releasing it twice is an error.
type Registry struct {
	mu     sync.Mutex
	store  *FileStore
	live   map[string]domain.PlayableSource
	logger zerolog.Logger
}

func NewRegistry(store *FileStore, logger zerolog.Logger) *Registry {
	return &Registry{
		store:  store,
		live:   make(map[string]domain.PlayableSource),
		logger: logger,
	}
}

// Acquire registers a new reference to the bytes behind video.
func (r *Registry) Acquire(video domain.UploadedVideo) (domain.PlayableSource, error) {
	path, err := r.store.Path(video.Key)
	if err != nil {
		return domain.PlayableSource{}, err
	}
	if _, err := os.Stat(path); err != nil {
		return domain.PlayableSource{}, fmt.Errorf("storage: acquire source: %w", err)
	}
	src := domain.PlayableSource{
		ID:       uuid.NewString(),
		Key:      video.Key,
		MimeType: video.MimeType,
	}
	r.mu.Lock()
	r.live[src.ID] = src
	live := len(r.live)
	r.mu.Unlock()
	metrics.LiveSources.Set(float64(live))
	r.logger.Debug().Str("source_id", src.ID).Str("key", src.Key).Int("live", live).Msg("storage: source acquired")
	return src, nil
}

// Release revokes src. It returns domain.ErrSourceReleased when src is not live.
func (r *Registry) Release(src domain.PlayableSource) error {
	r.mu.Lock()
	_, ok := r.live[src.ID]
	delete(r.live, src.ID)
	live := len(r.live)
	r.mu.Unlock()
	if !ok {
		return domain.ErrSourceReleased
	}
	metrics.LiveSources.Set(float64(live))
	r.logger.Debug().Str("source_id", src.ID).Int("live", live).Msg("storage: source released")
	return nil
}

// Lookup returns the live reference with the given id.
func (r *Registry) Lookup(id string) (domain.PlayableSource, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.live[id]
	return src, ok
}

// Path resolves a live reference to the file backing it.
func (r *Registry) Path(src domain.PlayableSource) (string, error) {
	if _, ok := r.Lookup(src.ID); !ok {
		return "", domain.ErrSourceReleased
	}
	return r.store.Path(src.Key)
}

// Live reports how many references are currently held.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
