package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingInquiry is a visitor's request to occupy one vacant bed.
type BookingInquiry struct {
	ID        uuid.UUID `json:"id"`
	ListingID string    `json:"listing_id"`
	BedID     string    `json:"bed_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	VisitorID string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
