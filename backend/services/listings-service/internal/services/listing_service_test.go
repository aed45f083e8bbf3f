package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

func listingFixture(t *testing.T) (*fixture, *ListingService) {
	t.Helper()
	pending := rental("pending", 5000)
	pending.Status = models.ModerationPending
	f := newFixture(t,
		[]*models.Listing{rental("a", 10000), rental("b", 20000), pending, pg("p", 8000)},
		[]*models.RoommateProfile{roommate("m", 9000, "Male")},
	)
	smart := NewSmartSortService(f.catalogue, f.ents, &reverseRanker{}, time.Second)
	return f, NewListingService(f.catalogue, f.ents, smart, f.pricing)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.StatusCode
}

func TestListItemsRedactsAndHidesPending(t *testing.T) {
	_, svc := listingFixture(t)

	res, err := svc.ListItems(context.Background(), "v1", models.CategoryRental, DefaultFilterState())
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	assert.Equal(t, "a", res.Items[0].Item.ID())
	assert.Equal(t, "b", res.Items[1].Item.ID())
	for _, v := range res.Items {
		assert.False(t, v.Unlocked)
		assert.Equal(t, utils.RedactedPlaceholder, v.Item.Listing.ContactPhone)
	}
}

func TestUnlockFlow(t *testing.T) {
	ctx := context.Background()
	f, svc := listingFixture(t)

	_, err := svc.UnlockItem(ctx, "v1", "a")
	assert.Equal(t, http.StatusPaymentRequired, statusOf(t, err))
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.ErrCodeInsufficientCredits, appErr.Code)
	assert.Equal(t, models.DefaultPricing().UnlockPlans, appErr.Details)

	_, err = f.ents.Grant(ctx, "v1", models.PlanOne)
	require.NoError(t, err)

	res, err := svc.UnlockItem(ctx, "v1", "a")
	require.NoError(t, err)
	assert.Equal(t, ConsumeUnlocked, res.Outcome)
	assert.Equal(t, "Details Unlocked!", res.Title)
	assert.Equal(t, "You have 0 unlocks remaining.", res.Message)
	assert.Equal(t, "+919820000001", res.Item.Listing.ContactPhone)

	again, err := svc.UnlockItem(ctx, "v1", "a")
	require.NoError(t, err)
	assert.Equal(t, ConsumeAlreadyUnlocked, again.Outcome)

	list, err := svc.ListItems(ctx, "v1", models.CategoryRental, DefaultFilterState())
	require.NoError(t, err)
	assert.True(t, list.Items[0].Unlocked)
	assert.Equal(t, "+919820000001", list.Items[0].Item.Listing.ContactPhone)
	assert.False(t, list.Items[1].Unlocked)

	other, err := svc.ListItems(ctx, "v2", models.CategoryRental, DefaultFilterState())
	require.NoError(t, err)
	assert.False(t, other.Items[0].Unlocked, "unlocks are per visitor")
}

func TestUnlockUnknownOrPendingItem(t *testing.T) {
	ctx := context.Background()
	f, svc := listingFixture(t)
	_, err := f.ents.Grant(ctx, "v1", models.PlanFive)
	require.NoError(t, err)

	_, err = svc.UnlockItem(ctx, "v1", "nope")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	_, err = svc.UnlockItem(ctx, "v1", "pending")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	state, err := f.ents.Snapshot(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 5, state.Count, "failed unlocks cost nothing")
}

func TestGetItemDetailsCountsViews(t *testing.T) {
	ctx := context.Background()
	_, svc := listingFixture(t)

	v, err := svc.GetItemDetails(ctx, "v1", "m")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Item.Views())
	assert.Equal(t, utils.RedactedPlaceholder, v.Item.Roommate.ContactPhone)

	v, err = svc.GetItemDetails(ctx, "v2", "m")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Item.Views())

	_, err = svc.GetItemDetails(ctx, "v1", "pending")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestListingSmartSortPresentsRedacted(t *testing.T) {
	_, svc := listingFixture(t)
	res, err := svc.SmartSort(context.Background(), "v1", models.CategoryRental, SmartSortInput{Filters: DefaultFilterState()})
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	assert.Equal(t, "b", res.Items[0].Item.ID())
	assert.Equal(t, utils.RedactedPlaceholder, res.Items[0].Item.Listing.OwnerName)

	list, err := svc.ListItems(context.Background(), "v1", models.CategoryRental, DefaultFilterState())
	require.NoError(t, err)
	assert.Equal(t, "b", list.Items[0].Item.ID(), "browse uses the sorted order")
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Roommates")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryRoommate, c)

	_, err = ParseCategory("castle")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}
