package dimension

import (
	"context"
	"errors"
	"fmt"
	"log"

	"datajobs/internal/normalize"
	"datajobs/internal/repository"

	"github.com/google/uuid"
)

// ConflictResolutionError means two writers raced on the same dimension
// key and the reconciliation re-read could not find a winner either.
// Surfaced, never papered over with a silent overwrite.
type ConflictResolutionError struct {
	Entity string
	Key    string
}

func (e *ConflictResolutionError) Error() string {
	return fmt.Sprintf("conflict on %s %q could not be reconciled", e.Entity, e.Key)
}

// Upserter lazily creates companies and locations on first sighting.
// Creation is a conditional insert; on losing the race the loser re-reads
// and adopts the winner's id. Skills and roles are never created here —
// those vocabularies are curated.
type Upserter struct {
	companies repository.CompanyRepository
	locations repository.LocationRepository
	logger    *log.Logger
}

func NewUpserter(companies repository.CompanyRepository, locations repository.LocationRepository, logger *log.Logger) *Upserter {
	if logger == nil {
		logger = log.Default()
	}
	return &Upserter{companies: companies, locations: locations, logger: logger}
}

// ResolveOrCreateCompany finds the company by normalized name or creates
// it. Attribute observations merge only into null; a conflicting
// observation is logged for curation, never applied.
func (u *Upserter) ResolveOrCreateCompany(ctx context.Context, name, size, industry string) (uuid.UUID, error) {
	key := normalize.CompanyKey(name)
	if key == "" {
		return uuid.Nil, fmt.Errorf("empty company name")
	}

	existing, err := u.companies.FindByNormalizedName(ctx, key)
	switch {
	case err == nil:
		return u.mergeCompany(ctx, existing, size, industry)
	case !errors.Is(err, repository.ErrCompanyNotFound):
		return uuid.Nil, err
	}

	created, err := u.companies.InsertIfAbsent(ctx, repository.Company{
		ID:             uuid.New(),
		Name:           name,
		NormalizedName: key,
		Size:           size,
		Industry:       industry,
	})
	if err != nil {
		return uuid.Nil, err
	}

	// whether we won or lost the race, the row exists now; read it back
	winner, err := u.companies.FindByNormalizedName(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return uuid.Nil, &ConflictResolutionError{Entity: "company", Key: key}
		}
		return uuid.Nil, err
	}
	if !created {
		return u.mergeCompany(ctx, winner, size, industry)
	}
	return winner.ID, nil
}

func (u *Upserter) mergeCompany(ctx context.Context, existing repository.Company, size, industry string) (uuid.UUID, error) {
	if size != "" && existing.Size != "" && size != existing.Size {
		u.logger.Printf("company attribute conflict | company=%q field=size have=%q observed=%q", existing.Name, existing.Size, size)
		size = ""
	}
	if industry != "" && existing.Industry != "" && industry != existing.Industry {
		u.logger.Printf("company attribute conflict | company=%q field=industry have=%q observed=%q", existing.Name, existing.Industry, industry)
		industry = ""
	}
	if (size != "" && existing.Size == "") || (industry != "" && existing.Industry == "") {
		if err := u.companies.MergeAttributes(ctx, existing.ID, size, industry); err != nil {
			return uuid.Nil, err
		}
	}
	return existing.ID, nil
}

// FindOrCreateLocation is the conditional create on the (city, country,
// iso) key. Coordinates and population are reference data: set on create,
// never averaged or overwritten per record afterwards.
func (u *Upserter) FindOrCreateLocation(ctx context.Context, loc repository.Location) (uuid.UUID, error) {
	if loc.City == "" || loc.Country == "" {
		return uuid.Nil, fmt.Errorf("location requires city and country")
	}

	if existing, err := u.locations.FindByKey(ctx, loc.City, loc.Country, loc.CountryISO); err == nil {
		return existing.ID, nil
	}

	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	if _, err := u.locations.InsertIfAbsent(ctx, loc); err != nil {
		return uuid.Nil, err
	}

	winner, err := u.locations.FindByKey(ctx, loc.City, loc.Country, loc.CountryISO)
	if err != nil {
		return uuid.Nil, &ConflictResolutionError{Entity: "location", Key: loc.City + ", " + loc.Country}
	}
	return winner.ID, nil
}
