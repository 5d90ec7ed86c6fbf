package seeder

import (
	"context"
	"fmt"

	"datajobs/internal/database"
)

type SkillsSeeder struct{}

func (SkillsSeeder) Name() string { return "skills" }

func (SkillsSeeder) Run(ctx context.Context, db database.DB) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	items := []struct {
		Name     string
		Category string
	}{
		{Name: "Python", Category: "Programming"},
		{Name: "R", Category: "Programming"},
		{Name: "Java", Category: "Programming"},
		{Name: "Scala", Category: "Programming"},
		{Name: "Go", Category: "Programming"},
		{Name: "SQL", Category: "Database"},
		{Name: "PostgreSQL", Category: "Database"},
		{Name: "MySQL", Category: "Database"},
		{Name: "MongoDB", Category: "Database"},
		{Name: "Redis", Category: "Database"},
		{Name: "Snowflake", Category: "Data Engineering"},
		{Name: "Apache Spark", Category: "Data Engineering"},
		{Name: "Apache Kafka", Category: "Data Engineering"},
		{Name: "Apache Airflow", Category: "Data Engineering"},
		{Name: "dbt", Category: "Data Engineering"},
		{Name: "ETL", Category: "Data Engineering"},
		{Name: "Tableau", Category: "Visualization"},
		{Name: "Power BI", Category: "Visualization"},
		{Name: "Looker", Category: "Visualization"},
		{Name: "AWS", Category: "Cloud"},
		{Name: "Google Cloud Platform", Category: "Cloud"},
		{Name: "Microsoft Azure", Category: "Cloud"},
		{Name: "Machine Learning", Category: "Machine Learning"},
		{Name: "Deep Learning", Category: "Machine Learning"},
		{Name: "TensorFlow", Category: "Machine Learning"},
		{Name: "PyTorch", Category: "Machine Learning"},
		{Name: "Natural Language Processing", Category: "Machine Learning"},
		{Name: "Statistics", Category: "Statistics"},
		{Name: "A/B Testing", Category: "Statistics"},
		{Name: "Docker", Category: "DevOps"},
		{Name: "Kubernetes", Category: "DevOps"},
		{Name: "Terraform", Category: "DevOps"},
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO skills (skill_name, skill_category) VALUES ($1, $2) ON CONFLICT (skill_name) DO NOTHING`,
			it.Name, it.Category,
		); err != nil {
			return err
		}
	}

	aliases := []struct {
		Alias string
		Skill string
	}{
		{Alias: "k8s", Skill: "Kubernetes"},
		{Alias: "ml", Skill: "Machine Learning"},
		{Alias: "dl", Skill: "Deep Learning"},
		{Alias: "nlp", Skill: "Natural Language Processing"},
		{Alias: "gcp", Skill: "Google Cloud Platform"},
		{Alias: "azure", Skill: "Microsoft Azure"},
		{Alias: "amazon web services", Skill: "AWS"},
		{Alias: "spark", Skill: "Apache Spark"},
		{Alias: "kafka", Skill: "Apache Kafka"},
		{Alias: "airflow", Skill: "Apache Airflow"},
		{Alias: "postgres", Skill: "PostgreSQL"},
		{Alias: "powerbi", Skill: "Power BI"},
		{Alias: "tf", Skill: "TensorFlow"},
	}

	for _, a := range aliases {
		if _, err := tx.Exec(ctx,
			`INSERT INTO skill_aliases (alias, skill_id)
			 SELECT $1, skill_id FROM skills WHERE skill_name = $2
			 ON CONFLICT (alias) DO NOTHING`,
			a.Alias, a.Skill,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
