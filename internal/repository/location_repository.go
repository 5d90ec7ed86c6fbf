package repository

import (
	"context"
	"fmt"
	"strings"

	"datajobs/internal/alias"
	"datajobs/internal/database"

	"github.com/google/uuid"
)

type Location struct {
	ID         uuid.UUID
	City       string
	Country    string
	CountryISO string
	Latitude   *float64
	Longitude  *float64
	Population *int64
}

// DisplayName is the canonical surface form the resolver matches raw
// location strings against.
func (l Location) DisplayName() string {
	parts := []string{l.City}
	if l.Country != "" {
		parts = append(parts, l.Country)
	}
	return strings.Join(parts, ", ")
}

type LocationRepository interface {
	ListEntries(ctx context.Context) ([]alias.Entry, error)
	ListAliases(ctx context.Context) (map[string]uuid.UUID, error)
	FindByKey(ctx context.Context, city, country, iso string) (Location, error)
	// InsertIfAbsent is a conditional create on the (city, country, iso)
	// key; false means another row already owns the key.
	InsertIfAbsent(ctx context.Context, loc Location) (bool, error)
}

var ErrLocationNotFound = fmt.Errorf("location not found")

type PostgresLocationRepository struct {
	db database.DB
}

func NewPostgresLocationRepository(db database.DB) *PostgresLocationRepository {
	return &PostgresLocationRepository{db: db}
}

func (r *PostgresLocationRepository) ListEntries(ctx context.Context) ([]alias.Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT l.location_id, l.city, l.country, COUNT(jp.job_id)
		FROM locations l
		LEFT JOIN job_postings jp ON jp.location_id = l.location_id
		GROUP BY l.location_id, l.city, l.country`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]alias.Entry, 0)
	for rows.Next() {
		var e alias.Entry
		var city, country string
		if err := rows.Scan(&e.ID, &city, &country, &e.PostingCount); err != nil {
			return nil, err
		}
		e.Canonical = Location{City: city, Country: country}.DisplayName()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresLocationRepository) ListAliases(ctx context.Context) (map[string]uuid.UUID, error) {
	return listAliases(ctx, r.db, `SELECT alias, location_id FROM location_aliases`)
}

func (r *PostgresLocationRepository) FindByKey(ctx context.Context, city, country, iso string) (Location, error) {
	row := r.db.QueryRow(ctx, `
		SELECT location_id, city, country, COALESCE(country_iso, ''), latitude, longitude, population
		FROM locations
		WHERE city = $1 AND country = $2 AND country_iso IS NOT DISTINCT FROM NULLIF($3, '')
		LIMIT 1`,
		city, country, iso,
	)
	var l Location
	if err := row.Scan(&l.ID, &l.City, &l.Country, &l.CountryISO, &l.Latitude, &l.Longitude, &l.Population); err != nil {
		return Location{}, err
	}
	return l, nil
}

func (r *PostgresLocationRepository) InsertIfAbsent(ctx context.Context, loc Location) (bool, error) {
	affected, err := r.db.Exec(ctx, `
		INSERT INTO locations (location_id, city, country, country_iso, latitude, longitude, population)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		ON CONFLICT (city, country, country_iso) DO NOTHING`,
		loc.ID, loc.City, loc.Country, loc.CountryISO, loc.Latitude, loc.Longitude, loc.Population,
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
