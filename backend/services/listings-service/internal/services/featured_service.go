package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/constants"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type FeaturedResult struct {
	Listings  []ItemView `json:"listings"`
	Roommates []ItemView `json:"roommates"`
	RotatedAt time.Time  `json:"rotated_at"`
}

// FeaturedService holds the home page picks. Rotate is driven by cron.
type FeaturedService struct {
	catalogue    *Catalogue
	entitlements EntitlementService
	perKind      int

	mu        sync.RWMutex
	listings  []string
	roommates []string
	rotatedAt time.Time
}

func NewFeaturedService(catalogue *Catalogue, entitlements EntitlementService) *FeaturedService {
	return &FeaturedService{
		catalogue:    catalogue,
		entitlements: entitlements,
		perKind:      constants.FeaturedPerKind,
	}
}

// Rotate picks random approved listings and roommates who have a place.
func (s *FeaturedService) Rotate(ctx context.Context) error {
	listings, err := s.catalogue.Approved(ctx, collectionListings)
	if err != nil {
		return err
	}
	roommates, err := s.catalogue.Approved(ctx, collectionRoommates)
	if err != nil {
		return err
	}
	withPlace := roommates[:0:0]
	for _, r := range roommates {
		if r.Roommate.HasProperty {
			withPlace = append(withPlace, r)
		}
	}

	pickedListings := itemIDs(pickRandom(listings, s.perKind))
	pickedRoommates := itemIDs(pickRandom(withPlace, s.perKind))

	s.mu.Lock()
	s.listings, s.roommates = pickedListings, pickedRoommates
	s.rotatedAt = time.Now().UTC()
	s.mu.Unlock()

	utils.Logger.Debugf("featured rotated: %d listings, %d roommates", len(pickedListings), len(pickedRoommates))
	return nil
}

// Featured returns the current picks as the visitor may see them. Picks
// deleted or unpublished since the last rotation are skipped.
func (s *FeaturedService) Featured(ctx context.Context, visitor string) (*FeaturedResult, error) {
	s.mu.RLock()
	empty := s.rotatedAt.IsZero()
	s.mu.RUnlock()
	if empty {
		if err := s.Rotate(ctx); err != nil {
			return nil, notFoundOrInternal(err, "featured items")
		}
	}

	s.mu.RLock()
	listingIDs, roommateIDs, rotatedAt := s.listings, s.roommates, s.rotatedAt
	s.mu.RUnlock()

	state, err := s.entitlements.Snapshot(ctx, visitor)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[string]struct{}, len(state.UnlockedIDs))
	for _, id := range state.UnlockedIDs {
		unlocked[id] = struct{}{}
	}

	resolve := func(ids []string) []ItemView {
		out := make([]ItemView, 0, len(ids))
		for _, id := range ids {
			it, err := s.catalogue.FindPublic(ctx, id)
			if err != nil {
				continue
			}
			_, ok := unlocked[id]
			out = append(out, ItemView{Item: publicView(it, ok), Unlocked: ok})
		}
		return out
	}
	return &FeaturedResult{
		Listings:  resolve(listingIDs),
		Roommates: resolve(roommateIDs),
		RotatedAt: rotatedAt,
	}, nil
}

func pickRandom(items []models.Item, n int) []models.Item {
	shuffled := append([]models.Item(nil), items...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}
