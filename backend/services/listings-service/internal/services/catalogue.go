package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v4"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/constants"
	internal_utils "github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/utils"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// collection is a stored item set. PG and Rental listings share one
// collection, so a smart sort over PG keeps rentals in their prior order.
type collection string

const (
	collectionListings  collection = "listings"
	collectionRoommates collection = "roommates"
)

func collectionFor(c models.Category) collection {
	if c == models.CategoryRoommate {
		return collectionRoommates
	}
	return collectionListings
}

// Catalogue reads items from both repositories and applies a visitor's
// working order on top of the natural collection order.
type Catalogue struct {
	listings  repositories.ListingRepository
	roommates repositories.RoommateRepository
	kv        repositories.KeyValueStore
}

func NewCatalogue(
	listings repositories.ListingRepository,
	roommates repositories.RoommateRepository,
	kv repositories.KeyValueStore,
) *Catalogue {
	return &Catalogue{listings: listings, roommates: roommates, kv: kv}
}

// Approved returns the public items of a collection in natural order.
func (c *Catalogue) Approved(ctx context.Context, col collection) ([]models.Item, error) {
	if col == collectionRoommates {
		rs, err := c.roommates.ListByStatus(ctx, models.ModerationApproved)
		if err != nil {
			return nil, err
		}
		out := make([]models.Item, 0, len(rs))
		for _, r := range rs {
			out = append(out, models.RoommateItem(r))
		}
		return out, nil
	}
	ls, err := c.listings.ListByStatus(ctx, models.ModerationApproved)
	if err != nil {
		return nil, err
	}
	out := make([]models.Item, 0, len(ls))
	for _, l := range ls {
		out = append(out, models.ListingItem(l))
	}
	return out, nil
}

// Ordered returns the approved items of col in the visitor's working order.
// Items the stored order does not know yet (fresh submissions) lead, in
// natural order, which matches how a submission is prepended client side.
func (c *Catalogue) Ordered(ctx context.Context, visitorKey string, col collection) ([]models.Item, error) {
	items, err := c.Approved(ctx, col)
	if err != nil {
		return nil, err
	}
	order, err := c.loadOrder(ctx, visitorKey, col)
	if err != nil {
		return nil, err
	}
	return applyOrder(items, order), nil
}

// Find looks an id up in both collections regardless of moderation status.
func (c *Catalogue) Find(ctx context.Context, id string) (models.Item, error) {
	l, err := c.listings.GetByID(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	if l != nil {
		return models.ListingItem(l), nil
	}
	r, err := c.roommates.GetByID(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	if r != nil {
		return models.RoommateItem(r), nil
	}
	return models.Item{}, internal_utils.ErrItemNotFound
}

// FindPublic is Find restricted to approved items; anything else is not found.
func (c *Catalogue) FindPublic(ctx context.Context, id string) (models.Item, error) {
	it, err := c.Find(ctx, id)
	if err != nil {
		return it, err
	}
	if it.Status() != models.ModerationApproved {
		return models.Item{}, internal_utils.ErrItemNotFound
	}
	return it, nil
}

func (c *Catalogue) IncrementViews(ctx context.Context, it models.Item) (int, error) {
	switch it.Kind {
	case models.ItemKindListing:
		return c.listings.IncrementViews(ctx, it.ID())
	case models.ItemKindRoommate:
		return c.roommates.IncrementViews(ctx, it.ID())
	}
	return 0, fmt.Errorf("item has unknown kind %d", it.Kind)
}

func (c *Catalogue) orderKey(visitorKey string, col collection) string {
	return constants.StorageKeyPrefix + ":" + visitorKey + ":order:" + string(col)
}

// A missing or unreadable stored order means natural order.
func (c *Catalogue) loadOrder(ctx context.Context, visitorKey string, col collection) ([]string, error) {
	raw, found, err := c.kv.Get(ctx, c.orderKey(visitorKey, col))
	if err != nil || !found {
		return nil, err
	}
	var ids []string
	if jerr := json.Unmarshal([]byte(raw), &ids); jerr != nil {
		utils.Logger.WithField("visitor", visitorKey).Debugf("ignoring malformed working order: %v", jerr)
		return nil, nil
	}
	return ids, nil
}

func (c *Catalogue) saveOrder(ctx context.Context, visitorKey string, col collection, ids []string) error {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, c.orderKey(visitorKey, col), string(encoded))
}

func applyOrder(items []models.Item, order []string) []models.Item {
	if len(order) == 0 {
		return items
	}
	byID := make(map[string]models.Item, len(items))
	for _, it := range items {
		byID[it.ID()] = it
	}
	known := make(map[string]struct{}, len(order))
	for _, id := range order {
		known[id] = struct{}{}
	}

	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if _, ok := known[it.ID()]; !ok {
			out = append(out, it)
		}
	}
	for _, id := range order {
		if it, ok := byID[id]; ok {
			out = append(out, it)
			delete(byID, id)
		}
	}
	return out
}

func itemIDs(items []models.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}
	return ids
}

// notFoundOrInternal maps lookup errors to HTTP-facing AppErrors.
func notFoundOrInternal(err error, what string) error {
	if errors.Is(err, internal_utils.ErrItemNotFound) || errors.Is(err, pgx.ErrNoRows) {
		return &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: what + " not found", Err: err}
	}
	return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load " + what, Err: err}
}
