package seeder

import (
	"context"

	"datajobs/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
