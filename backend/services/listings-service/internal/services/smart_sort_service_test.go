package services

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_utils "github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/utils"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type reverseRanker struct {
	mu   sync.Mutex
	last RankRequest
	n    int
}

func (r *reverseRanker) Rank(_ context.Context, req RankRequest) ([]string, error) {
	r.mu.Lock()
	r.last, r.n = req, r.n+1
	r.mu.Unlock()
	out := make([]string, 0, len(req.Listings))
	for i := len(req.Listings) - 1; i >= 0; i-- {
		out = append(out, req.Listings[i].ID)
	}
	return out, nil
}

type failingRanker struct{}

func (failingRanker) Rank(context.Context, RankRequest) ([]string, error) {
	return nil, errors.New("model unavailable")
}

// gateRanker blocks its first call until release is closed.
type gateRanker struct {
	reverseRanker
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gateRanker) Rank(ctx context.Context, req RankRequest) ([]string, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.started)
		<-g.release
	}
	return g.reverseRanker.Rank(ctx, req)
}

func sortFixture(t *testing.T, r Ranker) (*fixture, *SmartSortService) {
	t.Helper()
	f := newFixture(t, []*models.Listing{
		rental("a", 10000),
		rental("b", 20000),
		rental("c", 30000),
		pg("p", 8000),
	}, nil)
	return f, NewSmartSortService(f.catalogue, f.ents, r, time.Second)
}

func workingOrder(t *testing.T, f *fixture, visitor string) []string {
	t.Helper()
	items, err := f.catalogue.Ordered(context.Background(), visitorKey(visitor), collectionListings)
	require.NoError(t, err)
	return ids(items)
}

func TestSmartSortReordersAndPersists(t *testing.T) {
	ranker := &reverseRanker{}
	f, svc := sortFixture(t, ranker)

	out, err := svc.Sort(context.Background(), "v1", models.CategoryRental, SmartSortInput{Filters: DefaultFilterState()})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(out))
	assert.Equal(t, []string{"c", "b", "a", "p"}, workingOrder(t, f, "v1"))
	assert.Equal(t, []string{"a", "b", "c", "p"}, workingOrder(t, f, "someone-else"), "orders are per visitor")

	assert.Contains(t, ranker.last.UserPreferences, "budget under 50000")
	assert.Equal(t, "has not unlocked any properties yet", ranker.last.ViewingPatterns)
	assert.False(t, ranker.last.HasUnlockedDetails)

	st := svc.Status("v1", models.CategoryRental)
	assert.Equal(t, SortStateIdle, st.State)
	assert.Empty(t, st.LastError)
	assert.NotNil(t, st.LastSortedAt)
}

func TestSmartSortOnlyMovesTheFilteredView(t *testing.T) {
	f, svc := sortFixture(t, &reverseRanker{})

	fs := DefaultFilterState()
	fs.Budget = 25000
	out, err := svc.Sort(context.Background(), "v1", models.CategoryRental, SmartSortInput{Filters: fs})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(out))
	assert.Equal(t, []string{"b", "a", "c", "p"}, workingOrder(t, f, "v1"))
}

func TestSmartSortFailureKeepsOrder(t *testing.T) {
	f, svc := sortFixture(t, failingRanker{})

	_, err := svc.Sort(context.Background(), "v1", models.CategoryRental, SmartSortInput{Filters: DefaultFilterState()})
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
	assert.ErrorIs(t, err, internal_utils.ErrRankingFailed)

	assert.Equal(t, []string{"a", "b", "c", "p"}, workingOrder(t, f, "v1"))
	st := svc.Status("v1", models.CategoryRental)
	assert.Equal(t, SortStateIdle, st.State)
	assert.Contains(t, st.LastError, "model unavailable")
}

func TestSmartSortEmptyViewSkipsRanker(t *testing.T) {
	ranker := &reverseRanker{}
	_, svc := sortFixture(t, ranker)

	fs := DefaultFilterState()
	fs.Budget = 0
	out, err := svc.Sort(context.Background(), "v1", models.CategoryRental, SmartSortInput{Filters: fs})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, ranker.n)
}

func TestSmartSortSupersededResponseIsDiscarded(t *testing.T) {
	ranker := &gateRanker{started: make(chan struct{}), release: make(chan struct{})}
	f, svc := sortFixture(t, ranker)
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() {
		fs := DefaultFilterState()
		fs.Budget = 25000
		_, err := svc.Sort(ctx, "v1", models.CategoryRental, SmartSortInput{Filters: fs})
		firstErr <- err
	}()
	<-ranker.started
	assert.Equal(t, SortStateRequesting, svc.Status("v1", models.CategoryRental).State)

	out, err := svc.Sort(ctx, "v1", models.CategoryRental, SmartSortInput{Filters: DefaultFilterState()})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(out))

	close(ranker.release)
	err = <-firstErr
	assert.ErrorIs(t, err, internal_utils.ErrSuperseded)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)

	assert.Equal(t, []string{"c", "b", "a", "p"}, workingOrder(t, f, "v1"))
	assert.Equal(t, SortStateIdle, svc.Status("v1", models.CategoryRental).State)
}

// A newer request issued after the staleness check but before the write
// must still win.
func TestSmartSortApplyRechecksTokenUnderLock(t *testing.T) {
	f, svc := sortFixture(t, &reverseRanker{})
	ctx := context.Background()
	vk := visitorKey("v1")
	before := workingOrder(t, f, "v1")

	stale := svc.begin(vk, models.CategoryRental)
	current, err := f.catalogue.Ordered(ctx, vk, collectionListings)
	require.NoError(t, err)
	view := FilterItems(current, DefaultFilterState(), models.CategoryRental)
	slices.Reverse(view)

	fresh := svc.begin(vk, models.CategoryRental)
	err = svc.apply(ctx, vk, models.CategoryRental, stale, view)
	assert.ErrorIs(t, err, internal_utils.ErrSuperseded)
	assert.Equal(t, before, workingOrder(t, f, "v1"))

	require.NoError(t, svc.apply(ctx, vk, models.CategoryRental, fresh, view))
	assert.Equal(t, []string{"c", "b", "a", "p"}, workingOrder(t, f, "v1"))
}

func TestSmartSortUsesUnlockHistory(t *testing.T) {
	ranker := &reverseRanker{}
	f, svc := sortFixture(t, ranker)
	ctx := context.Background()

	_, err := f.ents.Grant(ctx, "v1", models.PlanFive)
	require.NoError(t, err)
	_, err = f.ents.Consume(ctx, "v1", "a")
	require.NoError(t, err)

	_, err = svc.Sort(ctx, "v1", models.CategoryRental, SmartSortInput{
		Filters:     DefaultFilterState(),
		Preferences: "quiet street near the station",
	})
	require.NoError(t, err)
	assert.True(t, ranker.last.HasUnlockedDetails)
	assert.Equal(t, "quiet street near the station", ranker.last.UserPreferences)
	assert.Equal(t, "has viewed properties in Kharghar", ranker.last.ViewingPatterns)
}

func TestReorder(t *testing.T) {
	view := []models.Item{
		models.ListingItem(rental("a", 1)),
		models.ListingItem(rental("b", 1)),
		models.ListingItem(rental("c", 1)),
		models.ListingItem(rental("d", 1)),
	}
	out := reorder(view, []string{"c", "ghost", "a", "c"})
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(out))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(reorder(view, nil)))
}

func TestDescribeFilters(t *testing.T) {
	fs := DefaultFilterState()
	fs.PropertyType = "2 BHK"
	fs.FurnishedStatus = "Furnished"
	fs.Locality = "Kharghar"
	fs.Budget = 25000
	assert.Equal(t, "prefers 2 BHK, Furnished, in Kharghar, Navi Mumbai, budget under 25000",
		describeFilters(fs, models.CategoryRental))

	rm := DefaultFilterState()
	rm.Gender = "Female"
	rm.LocationQuery = "Baner"
	assert.Equal(t, "prefers Female roommate, near Baner, budget under 50000",
		describeFilters(rm, models.CategoryRoommate))
}

func TestDescribeViewing(t *testing.T) {
	a := rental("a", 1)
	b := rental("b", 1)
	b.Locality = "Vashi"
	c := rental("c", 1)
	items := []models.Item{models.ListingItem(a), models.ListingItem(b), models.ListingItem(c)}

	assert.Equal(t, "has viewed properties in Kharghar and Vashi", describeViewing(items, []string{"a", "b", "c"}))
	assert.Equal(t, "has unlocked properties in other categories", describeViewing(items, []string{"zzz"}))
}

func TestCandidatesCarryNoContactDetails(t *testing.T) {
	c := candidateFor(models.ListingItem(rental("a", 1)))
	for _, v := range []string{"Asha Patil", "+919820000001", "asha@example.com", "12 Palm Beach Road"} {
		assert.False(t, slices.Contains([]string{c.Title, c.City, c.Locality, c.Size}, v))
	}
	assert.Equal(t, "a", c.ID)
}
