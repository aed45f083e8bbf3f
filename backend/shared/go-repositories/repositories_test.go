package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
)

func newListing(id string, rent int) *models.Listing {
	return &models.Listing{
		ID:           id,
		PropertyType: models.PropertyTypeRental,
		Title:        "Flat " + id,
		Rent:         rent,
		Amenities:    []string{"Wifi"},
		Beds:         []models.Bed{{ID: "b1", Status: models.BedVacant}},
		Status:       models.ModerationApproved,
	}
}

func TestMemoryListingRepositoryOrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryListingRepository()

	require.NoError(t, repo.Create(ctx, newListing("a", 10000)))
	require.NoError(t, repo.Create(ctx, newListing("b", 20000)))
	assert.Error(t, repo.Create(ctx, newListing("a", 1)), "duplicate ids are rejected")

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID, "newest first")
	assert.Equal(t, "a", all[1].ID)

	all[0].Amenities[0] = "mutated"
	all[0].Beds[0].Status = models.BedOccupied
	fresh, err := repo.GetByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Wifi", fresh.Amenities[0])
	assert.Equal(t, models.BedVacant, fresh.Beds[0].Status)

	missing, err := repo.GetByID(ctx, "zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryListingRepositoryUpdateWithRetry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryListingRepository()
	require.NoError(t, repo.Create(ctx, newListing("a", 10000)))

	err := repo.UpdateWithRetry(ctx, "a", func(l *models.Listing) error {
		l.Status = models.ModerationRejected
		return nil
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.ModerationRejected, got.Status)
	assert.Equal(t, int64(2), got.RowVersion)

	stale := got.Clone()
	stale.RowVersion = 1
	tag, err := repo.UpdateIfVersion(ctx, stale, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tag.RowsAffected())

	err = repo.UpdateWithRetry(ctx, "missing", func(*models.Listing) error { return nil })
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryListingRepositoryConcurrentViews(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryListingRepository()
	require.NoError(t, repo.Create(ctx, newListing("a", 10000)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementViews(ctx, "a")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 50, got.Views)

	_, err = repo.IncrementViews(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryRoommateRepositoryListByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRoommateRepository()
	require.NoError(t, repo.Create(ctx, &models.RoommateProfile{ID: "r1", Status: models.ModerationApproved}))
	require.NoError(t, repo.Create(ctx, &models.RoommateProfile{ID: "r2", Status: models.ModerationPending}))

	pending, err := repo.ListByStatus(ctx, models.ModerationPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "r2", pending[0].ID)

	require.NoError(t, repo.Delete(ctx, "r2"))
	assert.ErrorIs(t, repo.Delete(ctx, "r2"), pgx.ErrNoRows)
}

func TestMemoryKVStore(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKVStore()

	_, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "k", "v1"))
	require.NoError(t, kv.Set(ctx, "k", "v2"))
	v, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", v)
}

func TestFieldCipherRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	c := fieldCipher{key: key}
	sealed, err := c.sealAll("Flat 4, Vashi", "+919876543210", "")
	require.NoError(t, err)
	assert.NotEqual(t, "+919876543210", sealed[1])
	assert.Equal(t, "", sealed[2], "empty values stay empty")

	addr, phone, email := sealed[0], sealed[1], sealed[2]
	require.NoError(t, c.openAll(&addr, &phone, &email))
	assert.Equal(t, "Flat 4, Vashi", addr)
	assert.Equal(t, "+919876543210", phone)

	plain := fieldCipher{}
	out, err := plain.sealAll("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, out)
}
