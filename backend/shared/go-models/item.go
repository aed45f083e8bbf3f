package models

import (
	"encoding/json"
	"fmt"
)

// ItemKind discriminates the Item variant.
type ItemKind int

const (
	ItemKindListing ItemKind = iota + 1
	ItemKindRoommate
)

// Item is either a Listing or a RoommateProfile. Exactly one pointer is set,
// matching Kind. Code that needs variant-specific fields switches on Kind.
type Item struct {
	Kind     ItemKind
	Listing  *Listing
	Roommate *RoommateProfile
}

func ListingItem(l *Listing) Item { return Item{Kind: ItemKindListing, Listing: l} }

func RoommateItem(r *RoommateProfile) Item { return Item{Kind: ItemKindRoommate, Roommate: r} }

func (i Item) ID() string {
	switch i.Kind {
	case ItemKindListing:
		return i.Listing.ID
	case ItemKindRoommate:
		return i.Roommate.ID
	}
	return ""
}

func (i Item) Category() Category {
	switch i.Kind {
	case ItemKindListing:
		return i.Listing.PropertyType.Category()
	case ItemKindRoommate:
		return CategoryRoommate
	}
	return ""
}

// Rent is the monthly rent for a listing and the budget for a roommate.
func (i Item) Rent() int {
	switch i.Kind {
	case ItemKindListing:
		return i.Listing.Rent
	case ItemKindRoommate:
		return i.Roommate.Rent
	}
	return 0
}

func (i Item) Status() ModerationStatus {
	switch i.Kind {
	case ItemKindListing:
		return i.Listing.Status
	case ItemKindRoommate:
		return i.Roommate.Status
	}
	return ""
}

func (i Item) Views() int {
	switch i.Kind {
	case ItemKindListing:
		return i.Listing.Views
	case ItemKindRoommate:
		return i.Roommate.Views
	}
	return 0
}

// Clone deep-copies the underlying record.
func (i Item) Clone() Item {
	switch i.Kind {
	case ItemKindListing:
		return ListingItem(i.Listing.Clone())
	case ItemKindRoommate:
		return RoommateItem(i.Roommate.Clone())
	}
	return i
}

// MarshalJSON emits the underlying record; property_type tells clients which one.
func (i Item) MarshalJSON() ([]byte, error) {
	switch i.Kind {
	case ItemKindListing:
		return json.Marshal(i.Listing)
	case ItemKindRoommate:
		return json.Marshal(i.Roommate)
	}
	return nil, fmt.Errorf("item has unknown kind %d", i.Kind)
}

// UnmarshalJSON reads property_type to pick the variant.
func (i *Item) UnmarshalJSON(data []byte) error {
	var head struct {
		PropertyType PropertyType `json:"property_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.PropertyType {
	case PropertyTypePG, PropertyTypeRental:
		var l Listing
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		*i = ListingItem(&l)
	case PropertyTypeRoommate:
		var r RoommateProfile
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		*i = RoommateItem(&r)
	default:
		return fmt.Errorf("unknown property_type %q", head.PropertyType)
	}
	return nil
}
