package seeder

import (
	"context"
	"fmt"

	"datajobs/internal/database"
)

// Runner applies the curated reference data in order. Every seeder is
// re-runnable; existing rows are left alone.
type Runner struct {
	Seeders []Seeder
}

// Defaults returns the full seed set: vocabularies first, sources last.
func Defaults() Runner {
	return Runner{Seeders: []Seeder{
		SkillsSeeder{},
		RolesSeeder{},
		LocationsSeeder{},
		SourcesSeeder{},
	}}
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
	}
	return nil
}
