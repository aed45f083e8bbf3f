package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
)

var errStoreDown = errors.New("store down")

// flakyKV wraps a MemoryKVStore and fails writes (or reads) on demand.
type flakyKV struct {
	*repositories.MemoryKVStore
	failGet bool
	failSet bool
}

func newFlakyKV() *flakyKV {
	return &flakyKV{MemoryKVStore: repositories.NewMemoryKVStore()}
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errStoreDown
	}
	return f.MemoryKVStore.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errStoreDown
	}
	return f.MemoryKVStore.Set(ctx, key, value)
}

func rental(id string, rent int) *models.Listing {
	return &models.Listing{
		ID:              id,
		PropertyType:    models.PropertyTypeRental,
		Title:           "Flat " + id,
		Rent:            rent,
		City:            "Navi Mumbai",
		Locality:        "Kharghar",
		CompleteAddress: "12 Palm Beach Road",
		OwnerName:       "Asha Patil",
		ContactPhone:    "+919820000001",
		ContactEmail:    "asha@example.com",
		FurnishedStatus: models.FurnishedStatusFurnished,
		BrokerStatus:    models.BrokerStatusWithoutBroker,
		Size:            "2 BHK",
		Amenities:       []string{"WiFi", "Parking"},
		VideoURL:        "https://video.example/tour.mp4",
		Status:          models.ModerationApproved,
	}
}

func pg(id string, rent int, beds ...models.Bed) *models.Listing {
	l := rental(id, rent)
	l.PropertyType = models.PropertyTypePG
	l.Size = "Single Room"
	l.Beds = beds
	return l
}

func roommate(id string, rent int, gender string) *models.RoommateProfile {
	return &models.RoommateProfile{
		ID:              id,
		PropertyType:    models.PropertyTypeRoommate,
		OwnerName:       "Rohan",
		Age:             26,
		Rent:            rent,
		City:            "Pune",
		Locality:        "Baner",
		CompleteAddress: "Flat 4, Baner Road",
		ContactPhone:    "+919820000002",
		Gender:          gender,
		HasProperty:     true,
		Status:          models.ModerationApproved,
	}
}

type fixture struct {
	kv        *flakyKV
	listings  repositories.ListingRepository
	roommates repositories.RoommateRepository
	audit     repositories.AdminAuditLogRepository
	inquiries repositories.BookingInquiryRepository
	catalogue *Catalogue
	ents      EntitlementService
	pricing   *PricingService
}

// newFixture stores ls and rs so that List returns them in argument order.
func newFixture(t *testing.T, ls []*models.Listing, rs []*models.RoommateProfile) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		kv:        newFlakyKV(),
		listings:  repositories.NewMemoryListingRepository(),
		roommates: repositories.NewMemoryRoommateRepository(),
		audit:     repositories.NewMemoryAdminAuditLogRepository(),
		inquiries: repositories.NewMemoryBookingInquiryRepository(),
	}
	for i := len(ls) - 1; i >= 0; i-- {
		require.NoError(t, f.listings.Create(ctx, ls[i]))
	}
	for i := len(rs) - 1; i >= 0; i-- {
		require.NoError(t, f.roommates.Create(ctx, rs[i]))
	}
	f.catalogue = NewCatalogue(f.listings, f.roommates, f.kv)
	f.ents = NewEntitlementService(f.kv)
	f.pricing = NewPricingService(f.kv, f.audit)
	return f
}

func ids(items []models.Item) []string {
	return itemIDs(items)
}
