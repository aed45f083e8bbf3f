package models

import (
	"fmt"
	"strings"
)

// Category is the listing tab a visitor browses.
type Category string

const (
	CategoryPG       Category = "pg"
	CategoryRental   Category = "rental"
	CategoryRoommate Category = "roommate"
)

var AllCategories = []Category{CategoryPG, CategoryRental, CategoryRoommate}

func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryPG, CategoryRental, CategoryRoommate:
		return c, nil
	case "rentals":
		return CategoryRental, nil
	case "roommates":
		return CategoryRoommate, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// PropertyType is the discriminator stored on every item.
type PropertyType string

const (
	PropertyTypePG       PropertyType = "PG"
	PropertyTypeRental   PropertyType = "Rental"
	PropertyTypeRoommate PropertyType = "Roommate"
)

// Category maps a stored discriminator to its browse tab.
func (p PropertyType) Category() Category {
	switch p {
	case PropertyTypePG:
		return CategoryPG
	case PropertyTypeRental:
		return CategoryRental
	default:
		return CategoryRoommate
	}
}

type FurnishedStatus string

const (
	FurnishedStatusFurnished     FurnishedStatus = "Furnished"
	FurnishedStatusSemiFurnished FurnishedStatus = "Semi-Furnished"
	FurnishedStatusUnfurnished   FurnishedStatus = "Unfurnished"
)

type BrokerStatus string

const (
	BrokerStatusWithBroker    BrokerStatus = "With Broker"
	BrokerStatusWithoutBroker BrokerStatus = "Without Broker"
)

// ModerationStatus gates public visibility; only approved items are listed.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

type BedStatus string

const (
	BedVacant   BedStatus = "vacant"
	BedOccupied BedStatus = "occupied"
)
