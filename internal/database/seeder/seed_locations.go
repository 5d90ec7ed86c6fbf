package seeder

import (
	"context"
	"fmt"

	"datajobs/internal/database"
)

type LocationsSeeder struct{}

func (LocationsSeeder) Name() string { return "locations" }

func (LocationsSeeder) Run(ctx context.Context, db database.DB) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	items := []struct {
		City       string
		Country    string
		ISO        string
		Lat, Lon   float64
		Population int64
	}{
		{City: "New York", Country: "United States", ISO: "US", Lat: 40.7128, Lon: -74.0060, Population: 8336817},
		{City: "San Francisco", Country: "United States", ISO: "US", Lat: 37.7749, Lon: -122.4194, Population: 873965},
		{City: "Seattle", Country: "United States", ISO: "US", Lat: 47.6062, Lon: -122.3321, Population: 737015},
		{City: "Austin", Country: "United States", ISO: "US", Lat: 30.2672, Lon: -97.7431, Population: 961855},
		{City: "London", Country: "United Kingdom", ISO: "GB", Lat: 51.5074, Lon: -0.1278, Population: 8982000},
		{City: "Berlin", Country: "Germany", ISO: "DE", Lat: 52.5200, Lon: 13.4050, Population: 3669491},
		{City: "Amsterdam", Country: "Netherlands", ISO: "NL", Lat: 52.3676, Lon: 4.9041, Population: 872680},
		{City: "Paris", Country: "France", ISO: "FR", Lat: 48.8566, Lon: 2.3522, Population: 2161000},
		{City: "Zurich", Country: "Switzerland", ISO: "CH", Lat: 47.3769, Lon: 8.5417, Population: 421878},
		{City: "Toronto", Country: "Canada", ISO: "CA", Lat: 43.6532, Lon: -79.3832, Population: 2731571},
		{City: "Singapore", Country: "Singapore", ISO: "SG", Lat: 1.3521, Lon: 103.8198, Population: 5685800},
		{City: "Sydney", Country: "Australia", ISO: "AU", Lat: -33.8688, Lon: 151.2093, Population: 5312163},
		{City: "Bangalore", Country: "India", ISO: "IN", Lat: 12.9716, Lon: 77.5946, Population: 8443675},
		{City: "Jakarta", Country: "Indonesia", ISO: "ID", Lat: -6.2088, Lon: 106.8456, Population: 10562088},
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO locations (city, country, country_iso, latitude, longitude, population)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (city, country, country_iso) DO NOTHING`,
			it.City, it.Country, it.ISO, it.Lat, it.Lon, it.Population,
		); err != nil {
			return err
		}
	}

	aliases := []struct {
		Alias   string
		City    string
		Country string
	}{
		{Alias: "nyc", City: "New York", Country: "United States"},
		{Alias: "new york city", City: "New York", Country: "United States"},
		{Alias: "sf", City: "San Francisco", Country: "United States"},
		{Alias: "bay area", City: "San Francisco", Country: "United States"},
		{Alias: "london uk", City: "London", Country: "United Kingdom"},
		{Alias: "bengaluru", City: "Bangalore", Country: "India"},
	}

	for _, a := range aliases {
		if _, err := tx.Exec(ctx,
			`INSERT INTO location_aliases (alias, location_id)
			 SELECT $1, location_id FROM locations WHERE city = $2 AND country = $3
			 ON CONFLICT (alias) DO NOTHING`,
			a.Alias, a.City, a.Country,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
