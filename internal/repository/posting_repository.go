package repository

import (
	"context"
	"strings"

	"datajobs/internal/database"
	"datajobs/internal/domain/posting"

	"github.com/google/uuid"
)

type PostingRepository interface {
	FindByFingerprint(ctx context.Context, fingerprint string) ([]posting.Posting, error)

	InsertPosting(ctx context.Context, tx database.Tx, p posting.Posting, contentHash string) error
	UpdatePosting(ctx context.Context, tx database.Tx, p posting.Posting) error
	UpsertSkills(ctx context.Context, tx database.Tx, jobID uuid.UUID, reqs []posting.SkillRequirement) error
	UpsertRoles(ctx context.Context, tx database.Tx, jobID uuid.UUID, roleIDs []uuid.UUID) error
	UpsertLevels(ctx context.Context, tx database.Tx, jobID uuid.UUID, levels []string) error

	CountPostings(ctx context.Context) (int64, error)
	CountPostingsToday(ctx context.Context) (int64, error)
}

type PostgresPostingRepository struct {
	db database.DB
}

func NewPostgresPostingRepository(db database.DB) *PostgresPostingRepository {
	return &PostgresPostingRepository{db: db}
}

func (r *PostgresPostingRepository) FindByFingerprint(ctx context.Context, fingerprint string) ([]posting.Posting, error) {
	rows, err := r.db.Query(ctx, `
		SELECT job_id, company_id, COALESCE(location_id, '00000000-0000-0000-0000-000000000000'::uuid),
		       fingerprint, posted_date, expired_date, min_salary, max_salary,
		       COALESCE(currency, ''), required_exp_years,
		       COALESCE(education_level, ''), COALESCE(employment_type, ''),
		       COALESCE(remote_option, ''), COALESCE(job_description, ''), source
		FROM job_postings
		WHERE fingerprint = $1`,
		fingerprint,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]posting.Posting, 0)
	for rows.Next() {
		var p posting.Posting
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.LocationID, &p.Fingerprint,
			&p.PostedDate, &p.ExpiredDate, &p.MinSalary, &p.MaxSalary,
			&p.Currency, &p.ExpYears, &p.Education, &p.Employment,
			&p.Remote, &p.Description, &p.Source,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresPostingRepository) InsertPosting(ctx context.Context, tx database.Tx, p posting.Posting, contentHash string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO job_postings (
			job_id, company_id, location_id, fingerprint, content_hash,
			posted_date, expired_date, min_salary, max_salary, currency,
			required_exp_years, education_level, employment_type,
			remote_option, job_description, source
		) VALUES ($1,$2,NULLIF($3,'00000000-0000-0000-0000-000000000000'::uuid),$4,$5,$6,$7,$8,$9,NULLIF($10,''),$11,NULLIF($12,''),NULLIF($13,''),NULLIF($14,''),NULLIF($15,''),$16)`,
		p.ID, p.CompanyID, p.LocationID, p.Fingerprint, contentHash,
		p.PostedDate, p.ExpiredDate, p.MinSalary, p.MaxSalary, strings.ToUpper(p.Currency),
		p.ExpYears, p.Education, p.Employment, p.Remote, p.Description, p.Source,
	)
	return err
}

func (r *PostgresPostingRepository) UpdatePosting(ctx context.Context, tx database.Tx, p posting.Posting) error {
	_, err := tx.Exec(ctx, `
		UPDATE job_postings SET
			posted_date = $2,
			expired_date = $3,
			min_salary = $4,
			max_salary = $5,
			currency = NULLIF($6, ''),
			required_exp_years = $7,
			education_level = NULLIF($8, ''),
			employment_type = NULLIF($9, ''),
			remote_option = NULLIF($10, ''),
			job_description = NULLIF($11, ''),
			updated_at = now()
		WHERE job_id = $1`,
		p.ID, p.PostedDate, p.ExpiredDate, p.MinSalary, p.MaxSalary,
		strings.ToUpper(p.Currency), p.ExpYears, p.Education, p.Employment,
		p.Remote, p.Description,
	)
	return err
}

func (r *PostgresPostingRepository) UpsertSkills(ctx context.Context, tx database.Tx, jobID uuid.UUID, reqs []posting.SkillRequirement) error {
	for _, req := range reqs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO job_skills (job_id, skill_id, importance_level, skill_level_required)
			VALUES ($1, $2, $3, NULLIF($4, ''))
			ON CONFLICT (job_id, skill_id) DO NOTHING`,
			jobID, req.SkillID, req.Importance, req.Level,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresPostingRepository) UpsertRoles(ctx context.Context, tx database.Tx, jobID uuid.UUID, roleIDs []uuid.UUID) error {
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO job_roles (job_id, role_id) VALUES ($1, $2)
			ON CONFLICT (job_id, role_id) DO NOTHING`,
			jobID, roleID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresPostingRepository) UpsertLevels(ctx context.Context, tx database.Tx, jobID uuid.UUID, levels []string) error {
	for _, level := range levels {
		if _, err := tx.Exec(ctx, `
			INSERT INTO job_levels (job_id, level) VALUES ($1, $2)
			ON CONFLICT (job_id, level) DO NOTHING`,
			jobID, level,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresPostingRepository) CountPostings(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_postings`).Scan(&n)
	return n, err
}

func (r *PostgresPostingRepository) CountPostingsToday(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_postings WHERE created_at >= date_trunc('day', now())`).Scan(&n)
	return n, err
}
