package repository

import (
	"context"

	"datajobs/internal/alias"
	"datajobs/internal/database"

	"github.com/google/uuid"
)

type RoleRepository interface {
	ListEntries(ctx context.Context) ([]alias.Entry, error)
	ListAliases(ctx context.Context) (map[string]uuid.UUID, error)
}

type PostgresRoleRepository struct {
	db database.DB
}

func NewPostgresRoleRepository(db database.DB) *PostgresRoleRepository {
	return &PostgresRoleRepository{db: db}
}

func (r *PostgresRoleRepository) ListEntries(ctx context.Context) ([]alias.Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rn.role_id, rn.role_name, COUNT(jr.job_id)
		FROM role_names rn
		LEFT JOIN job_roles jr ON jr.role_id = rn.role_id
		GROUP BY rn.role_id, rn.role_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]alias.Entry, 0)
	for rows.Next() {
		var e alias.Entry
		if err := rows.Scan(&e.ID, &e.Canonical, &e.PostingCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRoleRepository) ListAliases(ctx context.Context) (map[string]uuid.UUID, error) {
	return listAliases(ctx, r.db, `SELECT alias, role_id FROM role_aliases`)
}
