package repository

import (
	"context"
	"encoding/json"
	"time"

	"datajobs/internal/database"

	"github.com/google/uuid"
)

const (
	QuarantineValidation = "validation"
	QuarantineUnresolved = "unresolved"
)

type QuarantineRecord struct {
	ID        uuid.UUID
	Source    string
	Kind      string
	Reasons   []string
	Payload   json.RawMessage
	CreatedAt time.Time
}

type QuarantineRepository interface {
	Insert(ctx context.Context, source, kind string, reasons []string, payload any) error
	List(ctx context.Context, limit, offset int) ([]QuarantineRecord, error)
	Count(ctx context.Context) (int64, error)
}

type PostgresQuarantineRepository struct {
	db database.DB
}

func NewPostgresQuarantineRepository(db database.DB) *PostgresQuarantineRepository {
	return &PostgresQuarantineRepository{db: db}
}

func (r *PostgresQuarantineRepository) Insert(ctx context.Context, source, kind string, reasons []string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO quarantine (quarantine_id, source, kind, reasons, payload)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)`,
		uuid.New(), source, kind, reasons, b,
	)
	return err
}

func (r *PostgresQuarantineRepository) List(ctx context.Context, limit, offset int) ([]QuarantineRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT quarantine_id, COALESCE(source, ''), kind, reasons, payload, created_at
		FROM quarantine
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]QuarantineRecord, 0)
	for rows.Next() {
		var q QuarantineRecord
		if err := rows.Scan(&q.ID, &q.Source, &q.Kind, &q.Reasons, &q.Payload, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *PostgresQuarantineRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quarantine`).Scan(&n)
	return n, err
}
