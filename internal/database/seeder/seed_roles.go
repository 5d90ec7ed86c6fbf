package seeder

import (
	"context"
	"fmt"

	"datajobs/internal/database"
	"datajobs/internal/domain/vocab"
)

type RolesSeeder struct{}

func (RolesSeeder) Name() string { return "roles" }

func (RolesSeeder) Run(ctx context.Context, db database.DB) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, name := range vocab.RoleNames.Values() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_names (role_name) VALUES ($1) ON CONFLICT (role_name) DO NOTHING`,
			name,
		); err != nil {
			return err
		}
	}

	aliases := []struct {
		Alias string
		Role  string
	}{
		{Alias: "data eng", Role: "Data Engineer"},
		{Alias: "de", Role: "Data Engineer"},
		{Alias: "ds", Role: "Data Scientist"},
		{Alias: "da", Role: "Data Analyst"},
		{Alias: "ml engineer", Role: "Machine Learning Engineer"},
		{Alias: "mle", Role: "Machine Learning Engineer"},
		{Alias: "bi analyst", Role: "Business Intelligence Analyst"},
		{Alias: "business intelligence", Role: "Business Intelligence Analyst"},
		{Alias: "bi engineer", Role: "BI Developer"},
	}

	for _, a := range aliases {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_aliases (alias, role_id)
			 SELECT $1, role_id FROM role_names WHERE role_name = $2
			 ON CONFLICT (alias) DO NOTHING`,
			a.Alias, a.Role,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
