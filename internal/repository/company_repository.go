package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"datajobs/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Company struct {
	ID             uuid.UUID
	Name           string
	NormalizedName string
	Size           string
	Industry       string
}

var ErrCompanyNotFound = fmt.Errorf("company not found")

type CompanyRepository interface {
	FindByNormalizedName(ctx context.Context, key string) (Company, error)
	// InsertIfAbsent conditionally creates the company; false means the
	// normalized name was already taken and the caller should re-read.
	InsertIfAbsent(ctx context.Context, c Company) (bool, error)
	// MergeAttributes fills size/industry only where currently null.
	MergeAttributes(ctx context.Context, id uuid.UUID, size, industry string) error
}

type PostgresCompanyRepository struct {
	db database.DB
}

func NewPostgresCompanyRepository(db database.DB) *PostgresCompanyRepository {
	return &PostgresCompanyRepository{db: db}
}

func (r *PostgresCompanyRepository) FindByNormalizedName(ctx context.Context, key string) (Company, error) {
	row := r.db.QueryRow(ctx, `
		SELECT company_id, company_name, normalized_name, COALESCE(size, ''), COALESCE(industry, '')
		FROM companies
		WHERE normalized_name = $1
		LIMIT 1`,
		key,
	)
	var c Company
	if err := row.Scan(&c.ID, &c.Name, &c.NormalizedName, &c.Size, &c.Industry); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrCompanyNotFound
		}
		return Company{}, err
	}
	return c, nil
}

func (r *PostgresCompanyRepository) InsertIfAbsent(ctx context.Context, c Company) (bool, error) {
	affected, err := r.db.Exec(ctx, `
		INSERT INTO companies (company_id, company_name, normalized_name, size, industry)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		ON CONFLICT (normalized_name) DO NOTHING`,
		c.ID, c.Name, c.NormalizedName, c.Size, c.Industry,
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresCompanyRepository) MergeAttributes(ctx context.Context, id uuid.UUID, size, industry string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE companies
		SET size = COALESCE(size, NULLIF($2, '')),
		    industry = COALESCE(industry, NULLIF($3, ''))
		WHERE company_id = $1`,
		id, size, industry,
	)
	return err
}
