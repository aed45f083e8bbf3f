package models

import (
	"slices"
	"time"
)

// RoommateProfile is a person looking for (or offering) a shared place.
// Rent holds the person's budget.
type RoommateProfile struct {
	Versioned
	ID                      string           `json:"id" yaml:"id"`
	PropertyType            PropertyType     `json:"property_type" yaml:"-"`
	OwnerName               string           `json:"owner_name" yaml:"owner_name"`
	Age                     int              `json:"age" yaml:"age"`
	Rent                    int              `json:"rent" yaml:"rent"`
	City                    string           `json:"city" yaml:"city"`
	Locality                string           `json:"locality" yaml:"locality"`
	State                   string           `json:"state" yaml:"state"`
	CompleteAddress         string           `json:"complete_address" yaml:"complete_address"`
	PartialAddress          string           `json:"partial_address" yaml:"partial_address"`
	ContactPhone            string           `json:"contact_phone" yaml:"contact_phone"`
	ContactEmail            string           `json:"contact_email,omitempty" yaml:"contact_email"`
	Description             string           `json:"description" yaml:"description"`
	Preferences             []string         `json:"preferences" yaml:"preferences"`
	Gender                  string           `json:"gender" yaml:"gender"`
	Images                  []string         `json:"images" yaml:"images"`
	Views                   int              `json:"views" yaml:"views"`
	OwnerID                 string           `json:"owner_id" yaml:"owner_id"`
	VerificationDocumentURL string           `json:"verification_document_url,omitempty" yaml:"verification_document_url"`
	HasProperty             bool             `json:"has_property" yaml:"has_property"`
	Status                  ModerationStatus `json:"status" yaml:"status"`
	CreatedAt               time.Time        `json:"created_at" yaml:"-"`
}

func (r *RoommateProfile) GetID() string { return r.ID }

func (r *RoommateProfile) Clone() *RoommateProfile {
	if r == nil {
		return nil
	}
	c := *r
	c.Preferences = slices.Clone(r.Preferences)
	c.Images = slices.Clone(r.Images)
	return &c
}
