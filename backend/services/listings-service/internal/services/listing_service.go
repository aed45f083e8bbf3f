package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	internal_utils "github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/utils"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// ItemView is one item as a particular visitor may see it.
type ItemView struct {
	Item     models.Item `json:"item"`
	Unlocked bool        `json:"unlocked"`
}

type ListResult struct {
	Category models.Category    `json:"category"`
	Filters  models.FilterState `json:"filters"`
	Items    []ItemView         `json:"items"`
	Count    int                `json:"count"`
}

type UnlockResult struct {
	Outcome     ConsumeOutcome `json:"outcome"`
	Remaining   int            `json:"remaining"`
	IsUnlimited bool           `json:"is_unlimited"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Item        models.Item    `json:"item"`
}

// ListingService is the public catalogue: browse, details, unlock and
// smart sort, with redaction applied per visitor.
type ListingService struct {
	catalogue    *Catalogue
	entitlements EntitlementService
	smartSort    *SmartSortService
	pricing      *PricingService
}

func NewListingService(
	catalogue *Catalogue,
	entitlements EntitlementService,
	smartSort *SmartSortService,
	pricing *PricingService,
) *ListingService {
	return &ListingService{
		catalogue:    catalogue,
		entitlements: entitlements,
		smartSort:    smartSort,
		pricing:      pricing,
	}
}

// ListItems returns the visitor's working order for category, filtered.
func (s *ListingService) ListItems(ctx context.Context, visitor string, category models.Category, fs models.FilterState) (*ListResult, error) {
	ordered, err := s.catalogue.Ordered(ctx, visitorKey(visitor), collectionFor(category))
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load listings", Err: err}
	}
	views, err := s.present(ctx, visitor, FilterItems(ordered, fs, category))
	if err != nil {
		return nil, err
	}
	return &ListResult{Category: category, Filters: fs, Items: views, Count: len(views)}, nil
}

// SmartSort re-ranks the filtered view and returns it as ListItems would.
func (s *ListingService) SmartSort(ctx context.Context, visitor string, category models.Category, in SmartSortInput) (*ListResult, error) {
	sorted, err := s.smartSort.Sort(ctx, visitor, category, in)
	if err != nil {
		return nil, err
	}
	views, err := s.present(ctx, visitor, sorted)
	if err != nil {
		return nil, err
	}
	return &ListResult{Category: category, Filters: in.Filters, Items: views, Count: len(views)}, nil
}

func (s *ListingService) SmartSortStatus(visitor string, category models.Category) SmartSortStatus {
	return s.smartSort.Status(visitor, category)
}

// GetItemDetails counts a view and returns the item, redacted unless the
// visitor has unlocked it.
func (s *ListingService) GetItemDetails(ctx context.Context, visitor, id string) (*ItemView, error) {
	it, err := s.catalogue.FindPublic(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "Item")
	}

	views, err := s.catalogue.IncrementViews(ctx, it)
	if err != nil {
		utils.Logger.WithError(err).WithField("itemID", id).Warn("failed to count view")
	} else {
		switch it.Kind {
		case models.ItemKindListing:
			it.Listing.Views = views
		case models.ItemKindRoommate:
			it.Roommate.Views = views
		}
	}

	unlocked, err := s.entitlements.IsUnlocked(ctx, visitor, id)
	if err != nil {
		return nil, err
	}
	return &ItemView{Item: publicView(it, unlocked), Unlocked: unlocked}, nil
}

// UnlockItem spends one unlock on id. Running out of unlocks is a 402 whose
// details carry the plan catalogue.
func (s *ListingService) UnlockItem(ctx context.Context, visitor, id string) (*UnlockResult, error) {
	it, err := s.catalogue.FindPublic(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "Item")
	}

	res, err := s.entitlements.Consume(ctx, visitor, id)
	if err != nil {
		return nil, err
	}
	log := utils.Logger.WithFields(logrus.Fields{"visitor": visitorKey(visitor), "itemID": id})

	if !res.Succeeded() {
		pricing, perr := s.pricing.Get(ctx)
		if perr != nil {
			pricing = models.DefaultPricing()
		}
		log.Info("unlock refused: no credits left")
		return nil, &utils.AppError{
			StatusCode: http.StatusPaymentRequired,
			Code:       utils.ErrCodeInsufficientCredits,
			Message:    "You have no unlocks left. Choose a plan to continue.",
			Details:    pricing.UnlockPlans,
		}
	}

	msg := fmt.Sprintf("You have %d unlocks remaining.", res.Remaining)
	if res.IsUnlimited {
		msg = "You have unlimited unlocks."
	}
	if res.Outcome == ConsumeUnlocked {
		log.Info("item unlocked")
	}
	return &UnlockResult{
		Outcome:     res.Outcome,
		Remaining:   res.Remaining,
		IsUnlimited: res.IsUnlimited,
		Title:       "Details Unlocked!",
		Message:     msg,
		Item:        publicView(it, true),
	}, nil
}

// present applies per-item redaction for one visitor.
func (s *ListingService) present(ctx context.Context, visitor string, items []models.Item) ([]ItemView, error) {
	state, err := s.entitlements.Snapshot(ctx, visitor)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[string]struct{}, len(state.UnlockedIDs))
	for _, id := range state.UnlockedIDs {
		unlocked[id] = struct{}{}
	}
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		_, ok := unlocked[it.ID()]
		out = append(out, ItemView{Item: publicView(it, ok), Unlocked: ok})
	}
	return out, nil
}

// ParseCategory maps a path segment to a Category or a 400.
func ParseCategory(raw string) (models.Category, error) {
	c, err := models.ParseCategory(raw)
	if err != nil {
		return "", &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeInvalidPayload,
			Message:    "category must be one of pg, rental, roommate",
			Err:        errors.Join(internal_utils.ErrUnknownCategory, err),
		}
	}
	return c, nil
}
