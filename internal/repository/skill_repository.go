package repository

import (
	"context"

	"datajobs/internal/alias"
	"datajobs/internal/database"

	"github.com/google/uuid"
)

type Skill struct {
	ID       uuid.UUID
	Name     string
	Category string
}

type SkillRepository interface {
	ListAll(ctx context.Context) ([]Skill, error)
	// ListEntries returns the vocabulary view: canonical rows with the
	// number of facts referencing each, for the resolver's tie-break.
	ListEntries(ctx context.Context) ([]alias.Entry, error)
	ListAliases(ctx context.Context) (map[string]uuid.UUID, error)
}

type PostgresSkillRepository struct {
	db database.DB
}

func NewPostgresSkillRepository(db database.DB) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db}
}

func (r *PostgresSkillRepository) ListAll(ctx context.Context) ([]Skill, error) {
	rows, err := r.db.Query(ctx, `SELECT skill_id, skill_name, skill_category FROM skills ORDER BY skill_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Skill, 0)
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresSkillRepository) ListEntries(ctx context.Context) ([]alias.Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.skill_id, s.skill_name, COUNT(js.job_id)
		FROM skills s
		LEFT JOIN job_skills js ON js.skill_id = s.skill_id
		GROUP BY s.skill_id, s.skill_name`)
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

func (r *PostgresSkillRepository) ListAliases(ctx context.Context) (map[string]uuid.UUID, error) {
	return listAliases(ctx, r.db, `SELECT alias, skill_id FROM skill_aliases`)
}

func listAliases(ctx context.Context, db database.DB, query string) (map[string]uuid.UUID, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]uuid.UUID)
	for rows.Next() {
		var a string
		var id uuid.UUID
		if err := rows.Scan(&a, &id); err != nil {
			return nil, err
		}
		out[a] = id
	}
	return out, rows.Err()
}
