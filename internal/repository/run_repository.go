package repository

import (
	"context"
	"strings"
	"time"

	"datajobs/internal/database"
	"datajobs/internal/domain/posting"

	"github.com/google/uuid"
)

// RunRepository records one row per ingestion batch plus per-record log
// lines, so unresolved/rejected surface forms stay reviewable after the
// batch is gone.
type RunRepository interface {
	CreateRun(ctx context.Context, source string) (uuid.UUID, error)
	FinishRun(ctx context.Context, runID uuid.UUID, status string, tally map[posting.OutcomeKind]int) error
	AppendLog(ctx context.Context, runID uuid.UUID, level, message string) error
}

type PostgresRunRepository struct {
	db database.DB
}

func NewPostgresRunRepository(db database.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

func (r *PostgresRunRepository) CreateRun(ctx context.Context, source string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx, `
		INSERT INTO ingest_runs (run_id, source, started_at, status)
		VALUES ($1, NULLIF($2, ''), $3, 'running')`,
		id, strings.TrimSpace(source), time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *PostgresRunRepository) FinishRun(ctx context.Context, runID uuid.UUID, status string, tally map[posting.OutcomeKind]int) error {
	if runID == uuid.Nil {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE ingest_runs
		SET finished_at = $2, status = $3, inserted = $4, updated = $5, duplicates = $6, rejected = $7
		WHERE run_id = $1`,
		runID, time.Now().UTC(), strings.TrimSpace(status),
		tally[posting.OutcomeInserted], tally[posting.OutcomeUpdated],
		tally[posting.OutcomeDuplicate], tally[posting.OutcomeRejected],
	)
	return err
}

func (r *PostgresRunRepository) AppendLog(ctx context.Context, runID uuid.UUID, level, message string) error {
	if runID == uuid.Nil {
		return nil
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO ingest_logs (log_id, ingest_run_id, level, message)
		VALUES ($1, $2, $3, $4)`,
		uuid.New(), runID, level, message,
	)
	return err
}
