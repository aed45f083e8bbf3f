package app

import (
	"context"

	"github.com/viraj01032007/setmystay02/backend/shared/go-seeding"
)

// SeedTestData loads the bundled demo catalogue. Safe to run on every boot.
func (a *App) SeedTestData(ctx context.Context) error {
	return seeding.SeedCatalogue(ctx, a.Listings, a.Roommates)
}
