package seeder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"datajobs/internal/database"

	"golang.org/x/crypto/bcrypt"
)

// SourcesSeeder registers the known crawler sources. A bootstrap source
// with a usable API key can be injected through the environment, so a
// fresh deployment can authenticate its first crawler without manual SQL.
type SourcesSeeder struct{}

func (SourcesSeeder) Name() string { return "job_sources" }

func (SourcesSeeder) Run(ctx context.Context, db database.DB) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	items := []struct {
		Name          string
		BaseURL       string
		Authoritative bool
	}{
		{Name: "linkedin", BaseURL: "https://www.linkedin.com/jobs"},
		{Name: "indeed", BaseURL: "https://www.indeed.com"},
		{Name: "glassdoor", BaseURL: "https://www.glassdoor.com"},
		{Name: "company-careers", BaseURL: "", Authoritative: true},
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO job_sources (name, base_url, authoritative)
			 VALUES ($1, NULLIF($2, ''), $3)
			 ON CONFLICT (name) DO NOTHING`,
			it.Name, it.BaseURL, it.Authoritative,
		); err != nil {
			return err
		}
	}

	name := strings.TrimSpace(os.Getenv("INGEST_BOOTSTRAP_SOURCE"))
	key := strings.TrimSpace(os.Getenv("INGEST_BOOTSTRAP_API_KEY"))
	if name != "" && key != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO job_sources (name, api_key_hash) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET api_key_hash = EXCLUDED.api_key_hash`,
			name, string(hash),
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
