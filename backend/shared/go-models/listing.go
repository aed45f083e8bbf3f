package models

import (
	"slices"
	"time"
)

type Bed struct {
	ID     string    `json:"id" yaml:"id"`
	Status BedStatus `json:"status" yaml:"status"`
}

// Listing is a PG or Rental property. Contact and address fields are
// sensitive and are redacted until the visitor unlocks the listing.
type Listing struct {
	Versioned
	ID                      string           `json:"id" yaml:"id"`
	PropertyType            PropertyType     `json:"property_type" yaml:"property_type"`
	Title                   string           `json:"title" yaml:"title"`
	Rent                    int              `json:"rent" yaml:"rent"`
	Area                    int              `json:"area" yaml:"area"`
	City                    string           `json:"city" yaml:"city"`
	Locality                string           `json:"locality" yaml:"locality"`
	State                   string           `json:"state" yaml:"state"`
	CompleteAddress         string           `json:"complete_address" yaml:"complete_address"`
	PartialAddress          string           `json:"partial_address" yaml:"partial_address"`
	OwnerName               string           `json:"owner_name" yaml:"owner_name"`
	ContactPhone            string           `json:"contact_phone" yaml:"contact_phone"`
	ContactEmail            string           `json:"contact_email,omitempty" yaml:"contact_email"`
	Description             string           `json:"description" yaml:"description"`
	FurnishedStatus         FurnishedStatus  `json:"furnished_status" yaml:"furnished_status"`
	Amenities               []string         `json:"amenities" yaml:"amenities"`
	Size                    string           `json:"size" yaml:"size"`
	Images                  []string         `json:"images" yaml:"images"`
	VideoURL                string           `json:"video_url,omitempty" yaml:"video_url"`
	Views                   int              `json:"views" yaml:"views"`
	OwnerID                 string           `json:"owner_id" yaml:"owner_id"`
	BrokerStatus            BrokerStatus     `json:"broker_status" yaml:"broker_status"`
	VerificationDocumentURL string           `json:"verification_document_url,omitempty" yaml:"verification_document_url"`
	Beds                    []Bed            `json:"beds,omitempty" yaml:"beds"`
	Status                  ModerationStatus `json:"status" yaml:"status"`
	CreatedAt               time.Time        `json:"created_at" yaml:"-"`
}

func (l *Listing) GetID() string { return l.ID }

// Clone returns a deep copy so callers may mutate it freely.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	c.Amenities = slices.Clone(l.Amenities)
	c.Images = slices.Clone(l.Images)
	c.Beds = slices.Clone(l.Beds)
	return &c
}

// BedByID returns nil when the listing has no such bed.
func (l *Listing) BedByID(id string) *Bed {
	for i := range l.Beds {
		if l.Beds[i].ID == id {
			return &l.Beds[i]
		}
	}
	return nil
}
