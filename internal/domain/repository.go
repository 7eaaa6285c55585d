package domain

import "context"

// GenerationRepository persists finished generation attempts. Session state is
// never restored from it.
type GenerationRepository interface {
	Record(ctx context.Context, rec GenerationRecord) error
	ListRecent(ctx context.Context, limit int) ([]GenerationRecord, error)
}
