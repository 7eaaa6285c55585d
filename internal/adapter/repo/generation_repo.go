package repo

import (
	"context"
	"fmt"

	"videoprompt/internal/domain"
	"videoprompt/internal/infra"
	"videoprompt/internal/sqlinline"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GenerationRepositoryPG implements domain.GenerationRepository.
type GenerationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewGenerationRepository creates a generation log backed by PostgreSQL.
func NewGenerationRepository(sql infra.SQLExecutor) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{sql: sql}
}

// EnsureSchema creates the generations table when it does not exist.
func (r *GenerationRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QEnsureGenerationsTable); err != nil {
		return fmt.Errorf("ensure generations schema: %w", err)
	}
	return nil
}

// Record inserts one finished attempt.
func (r *GenerationRepositoryPG) Record(ctx context.Context, rec domain.GenerationRecord) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGeneration,
		rec.ID,
		rec.Filename,
		rec.VideoDuration,
		rec.FrameCount,
		rec.Outcome,
		rec.ErrorKind,
		rec.Prompt,
		rec.LatencyMS,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

// ListRecent returns the newest attempts first.
func (r *GenerationRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListRecentGenerations, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	records := make([]domain.GenerationRecord, 0)
	for rows.Next() {
		var rec domain.GenerationRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Filename,
			&rec.VideoDuration,
			&rec.FrameCount,
			&rec.Outcome,
			&rec.ErrorKind,
			&rec.Prompt,
			&rec.LatencyMS,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return records, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)
