package repository

import (
	"context"
	"fmt"

	"datajobs/internal/alias"
	"datajobs/internal/database"
	"datajobs/internal/normalize"

	"github.com/google/uuid"
)

// PostgresAliasRepository persists learned aliases for all three
// vocabularies. Satisfies alias.Writer.
type PostgresAliasRepository struct {
	db database.DB
}

func NewPostgresAliasRepository(db database.DB) *PostgresAliasRepository {
	return &PostgresAliasRepository{db: db}
}

func (r *PostgresAliasRepository) InsertAlias(ctx context.Context, kind alias.Kind, surface string, id uuid.UUID) error {
	folded := normalize.Fold(surface)
	if folded == "" {
		return fmt.Errorf("empty alias surface")
	}

	var query string
	switch kind {
	case alias.KindSkill:
		query = `INSERT INTO skill_aliases (alias, skill_id) VALUES ($1, $2) ON CONFLICT (alias) DO NOTHING`
	case alias.KindRole:
		query = `INSERT INTO role_aliases (alias, role_id) VALUES ($1, $2) ON CONFLICT (alias) DO NOTHING`
	case alias.KindLocation:
		query = `INSERT INTO location_aliases (alias, location_id) VALUES ($1, $2) ON CONFLICT (alias) DO NOTHING`
	default:
		return fmt.Errorf("unknown alias kind %q", kind)
	}

	_, err := r.db.Exec(ctx, query, folded, id)
	return err
}
