package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	internal_utils "github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/utils"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type SortState string

const (
	SortStateIdle       SortState = "idle"
	SortStateRequesting SortState = "requesting"
)

type SmartSortStatus struct {
	Category     models.Category `json:"category"`
	State        SortState       `json:"state"`
	LastError    string          `json:"last_error,omitempty"`
	LastSortedAt *time.Time      `json:"last_sorted_at,omitempty"`
}

// SmartSortInput carries the visitor's filters and optional free-text
// context. Empty texts are derived from the filters and unlock history.
type SmartSortInput struct {
	Filters         models.FilterState
	Preferences     string
	ViewingPatterns string
}

// SmartSortService re-ranks a visitor's filtered view through a Ranker and
// stores the result as that visitor's working order for the collection.
type SmartSortService struct {
	catalogue    *Catalogue
	entitlements EntitlementService
	ranker       Ranker
	timeout      time.Duration

	applyLocks *keyedMutex

	mu     sync.Mutex
	tokens map[string]uint64
	status map[string]*SmartSortStatus
}

func NewSmartSortService(
	catalogue *Catalogue,
	entitlements EntitlementService,
	ranker Ranker,
	timeout time.Duration,
) *SmartSortService {
	if ranker == nil {
		ranker = PassthroughRanker{}
	}
	return &SmartSortService{
		catalogue:    catalogue,
		entitlements: entitlements,
		ranker:       ranker,
		timeout:      timeout,
		applyLocks:   newKeyedMutex(),
		tokens:       make(map[string]uint64),
		status:       make(map[string]*SmartSortStatus),
	}
}

// Sort ranks the current filtered view and returns it in the new order.
// A failed ranking leaves the working order untouched. A response that
// arrives after a newer request for the same visitor and category was
// issued is discarded with ErrSuperseded.
func (s *SmartSortService) Sort(ctx context.Context, visitor string, category models.Category, in SmartSortInput) ([]models.Item, error) {
	vk := visitorKey(visitor)
	col := collectionFor(category)
	log := utils.Logger.WithFields(logrus.Fields{"visitor": vk, "category": category})

	token := s.begin(vk, category)

	ordered, err := s.catalogue.Ordered(ctx, vk, col)
	if err != nil {
		s.finish(vk, category, token, err)
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load listings", Err: err}
	}
	view := FilterItems(ordered, in.Filters, category)
	if len(view) == 0 {
		s.finish(vk, category, token, nil)
		return view, nil
	}

	state, err := s.entitlements.Snapshot(ctx, visitor)
	if err != nil {
		s.finish(vk, category, token, err)
		return nil, err
	}

	req := RankRequest{
		Listings:           make([]RankCandidate, 0, len(view)),
		UserPreferences:    in.Preferences,
		ViewingPatterns:    in.ViewingPatterns,
		HasUnlockedDetails: len(state.UnlockedIDs) > 0,
	}
	for _, it := range view {
		req.Listings = append(req.Listings, candidateFor(it))
	}
	if strings.TrimSpace(req.UserPreferences) == "" {
		req.UserPreferences = describeFilters(in.Filters, category)
	}
	if strings.TrimSpace(req.ViewingPatterns) == "" {
		req.ViewingPatterns = describeViewing(ordered, state.UnlockedIDs)
	}

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	ranked, rankErr := s.ranker.Rank(rctx, req)
	cancel()

	if !s.isLatest(vk, category, token) {
		log.Info("discarding superseded smart sort response")
		return nil, supersededError()
	}
	if rankErr != nil {
		s.finish(vk, category, token, rankErr)
		log.WithError(rankErr).Warn("smart sort failed; keeping current order")
		return nil, &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Could not sort listings at this time",
			Err:        errors.Join(internal_utils.ErrRankingFailed, rankErr),
		}
	}

	sorted := reorder(view, ranked)
	if err := s.apply(ctx, vk, category, token, sorted); err != nil {
		if errors.Is(err, internal_utils.ErrSuperseded) {
			log.Info("discarding superseded smart sort response")
			return nil, supersededError()
		}
		s.finish(vk, category, token, err)
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to save sorted order", Err: err}
	}
	s.finish(vk, category, token, nil)
	log.Infof("smart sorted %d items", len(sorted))
	return sorted, nil
}

func supersededError() error {
	return &utils.AppError{
		StatusCode: http.StatusConflict,
		Code:       internal_utils.ErrCodeSuperseded,
		Message:    "A newer smart sort request replaced this one",
		Err:        internal_utils.ErrSuperseded,
	}
}

// apply merges the sorted block in front of the rest of the collection,
// reading the collection order again so a concurrent sort of the sibling
// category is not lost. The token is checked again under the collection
// lock; a stale token saves nothing and returns ErrSuperseded.
func (s *SmartSortService) apply(ctx context.Context, vk string, category models.Category, token uint64, sorted []models.Item) error {
	col := collectionFor(category)
	unlock := s.applyLocks.Lock(vk + ":" + string(col))
	defer unlock()

	if !s.isLatest(vk, category, token) {
		return internal_utils.ErrSuperseded
	}
	current, err := s.catalogue.Ordered(ctx, vk, col)
	if err != nil {
		return err
	}
	return s.catalogue.saveOrder(ctx, vk, col, itemIDs(mergeSorted(sorted, current)))
}

// mergeSorted puts sorted first and keeps every other item of the collection
// after it in its existing relative order.
func mergeSorted(sorted, collection []models.Item) []models.Item {
	inView := make(map[string]struct{}, len(sorted))
	for _, it := range sorted {
		inView[it.ID()] = struct{}{}
	}
	out := make([]models.Item, 0, len(collection)+len(sorted))
	out = append(out, sorted...)
	for _, it := range collection {
		if _, ok := inView[it.ID()]; !ok {
			out = append(out, it)
		}
	}
	return out
}

// Status reports whether a sort is in flight for the visitor and category.
func (s *SmartSortService) Status(visitor string, category models.Category) SmartSortStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.status[sortKey(visitorKey(visitor), category)]; ok {
		return *st
	}
	return SmartSortStatus{Category: category, State: SortStateIdle}
}

func (s *SmartSortService) begin(vk string, category models.Category) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := sortKey(vk, category)
	s.tokens[k]++
	st, ok := s.status[k]
	if !ok {
		st = &SmartSortStatus{Category: category}
		s.status[k] = st
	}
	st.State = SortStateRequesting
	return s.tokens[k]
}

func (s *SmartSortService) isLatest(vk string, category models.Category, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[sortKey(vk, category)] == token
}

// finish returns to idle only for the latest request.
func (s *SmartSortService) finish(vk string, category models.Category, token uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := sortKey(vk, category)
	if s.tokens[k] != token {
		return
	}
	st := s.status[k]
	st.State = SortStateIdle
	if err != nil {
		st.LastError = err.Error()
		return
	}
	now := time.Now().UTC()
	st.LastError = ""
	st.LastSortedAt = &now
}

func sortKey(vk string, category models.Category) string {
	return vk + "|" + string(category)
}

// describeFilters turns the active filters into a preference sentence,
// e.g. "2 BHK, Furnished, in Kharghar, Navi Mumbai, budget under 25000".
func describeFilters(fs models.FilterState, category models.Category) string {
	var parts []string
	active := func(v string) bool { return v != "" && v != models.FilterAny }

	switch category {
	case models.CategoryRental:
		if active(fs.PropertyType) {
			parts = append(parts, fs.PropertyType)
		}
	case models.CategoryPG:
		if active(fs.RoomType) {
			parts = append(parts, fs.RoomType)
		}
	case models.CategoryRoommate:
		if active(fs.Gender) {
			parts = append(parts, fs.Gender+" roommate")
		}
		if q := strings.TrimSpace(fs.LocationQuery); q != "" {
			parts = append(parts, "near "+q)
		}
	}
	if category != models.CategoryRoommate {
		if active(fs.FurnishedStatus) {
			parts = append(parts, fs.FurnishedStatus)
		}
		if active(fs.BrokerStatus) {
			parts = append(parts, strings.ToLower(fs.BrokerStatus))
		}
		switch {
		case active(fs.Locality) && active(fs.City):
			parts = append(parts, "in "+fs.Locality+", "+fs.City)
		case active(fs.City):
			parts = append(parts, "in "+fs.City)
		}
		if len(fs.Amenities) > 0 {
			parts = append(parts, "with "+strings.Join(fs.Amenities, ", "))
		}
	}
	parts = append(parts, fmt.Sprintf("budget under %d", fs.Budget))
	return "prefers " + strings.Join(parts, ", ")
}

// describeViewing summarises where the visitor's unlocked items are.
func describeViewing(items []models.Item, unlocked []string) string {
	if len(unlocked) == 0 {
		return "has not unlocked any properties yet"
	}
	want := make(map[string]struct{}, len(unlocked))
	for _, id := range unlocked {
		want[id] = struct{}{}
	}
	var places []string
	seen := make(map[string]struct{})
	for _, it := range items {
		if _, ok := want[it.ID()]; !ok {
			continue
		}
		var loc string
		switch it.Kind {
		case models.ItemKindListing:
			loc = it.Listing.Locality
		case models.ItemKindRoommate:
			loc = it.Roommate.Locality
		}
		if _, dup := seen[loc]; loc != "" && !dup {
			seen[loc] = struct{}{}
			places = append(places, loc)
		}
	}
	if len(places) == 0 {
		return "has unlocked properties in other categories"
	}
	if len(places) == 1 {
		return "has viewed properties in " + places[0]
	}
	return "has viewed properties in " + strings.Join(places[:len(places)-1], ", ") + " and " + places[len(places)-1]
}

func visitorKey(visitor string) string {
	return utils.HashToken(visitor)
}
