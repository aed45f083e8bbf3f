package seeding

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

// Catalogue is the bundled demo data, in natural browse order.
type Catalogue struct {
	Listings  []*models.Listing         `yaml:"listings"`
	Roommates []*models.RoommateProfile `yaml:"roommates"`
}

// LoadCatalogue decodes the embedded catalogue.
func LoadCatalogue() (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(catalogueYAML, &c); err != nil {
		return nil, fmt.Errorf("decode seed catalogue: %w", err)
	}
	for _, r := range c.Roommates {
		r.PropertyType = models.PropertyTypeRoommate
	}
	return &c, nil
}

// SeedCatalogue inserts every catalogue item that is not stored yet. Items
// are inserted back to front because repositories list newest first.
func SeedCatalogue(
	ctx context.Context,
	listingRepo repositories.ListingRepository,
	roommateRepo repositories.RoommateRepository,
) error {
	c, err := LoadCatalogue()
	if err != nil {
		return err
	}

	var inserted, skipped int
	for i := len(c.Listings) - 1; i >= 0; i-- {
		l := c.Listings[i]
		existing, err := listingRepo.GetByID(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("check listing %s: %w", l.ID, err)
		}
		if existing != nil {
			skipped++
			continue
		}
		if err := listingRepo.Create(ctx, l); err != nil {
			return fmt.Errorf("insert listing %s: %w", l.ID, err)
		}
		inserted++
	}
	for i := len(c.Roommates) - 1; i >= 0; i-- {
		r := c.Roommates[i]
		existing, err := roommateRepo.GetByID(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("check roommate %s: %w", r.ID, err)
		}
		if existing != nil {
			skipped++
			continue
		}
		if err := roommateRepo.Create(ctx, r); err != nil {
			return fmt.Errorf("insert roommate %s: %w", r.ID, err)
		}
		inserted++
	}

	utils.Logger.Infof("Seed catalogue: %d items inserted, %d already present.", inserted, skipped)
	return nil
}
