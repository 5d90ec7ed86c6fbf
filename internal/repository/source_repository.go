package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"datajobs/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Source struct {
	ID            uuid.UUID
	Name          string
	BaseURL       string
	APIKeyHash    string
	Authoritative bool
}

var ErrSourceNotFound = fmt.Errorf("source not found")

type SourceRepository interface {
	GetByName(ctx context.Context, name string) (Source, error)
	// Ensure registers a source if missing and returns its id, the
	// conditional-insert-then-read pattern dimensions also use.
	Ensure(ctx context.Context, name, baseURL string) (uuid.UUID, error)
}

type PostgresSourceRepository struct {
	db database.DB
}

func NewPostgresSourceRepository(db database.DB) *PostgresSourceRepository {
	return &PostgresSourceRepository{db: db}
}

func (r *PostgresSourceRepository) GetByName(ctx context.Context, name string) (Source, error) {
	row := r.db.QueryRow(ctx, `
		SELECT source_id, name, COALESCE(base_url, ''), COALESCE(api_key_hash, ''), authoritative
		FROM job_sources
		WHERE name = $1
		LIMIT 1`,
		strings.TrimSpace(name),
	)
	var s Source
	if err := row.Scan(&s.ID, &s.Name, &s.BaseURL, &s.APIKeyHash, &s.Authoritative); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return Source{}, ErrSourceNotFound
		}
		return Source{}, err
	}
	return s, nil
}

func (r *PostgresSourceRepository) Ensure(ctx context.Context, name, baseURL string) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("empty source name")
	}

	_, _ = r.db.Exec(ctx, `
		INSERT INTO job_sources (source_id, name, base_url)
		VALUES (gen_random_uuid(), $1, NULLIF($2, ''))
		ON CONFLICT (name) DO NOTHING`,
		name, strings.TrimSpace(baseURL),
	)

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, `SELECT source_id FROM job_sources WHERE name = $1 LIMIT 1`, name).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
