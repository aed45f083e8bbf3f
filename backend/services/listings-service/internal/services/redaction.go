package services

import (
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// Redact returns a copy of it with contact and address details replaced by
// a placeholder. The input is never modified.
func Redact(it models.Item) models.Item {
	c := it.Clone()
	switch c.Kind {
	case models.ItemKindListing:
		l := c.Listing
		l.CompleteAddress = utils.RedactedPlaceholder
		l.OwnerName = utils.RedactedPlaceholder
		l.ContactPhone = utils.RedactedPlaceholder
		if l.ContactEmail != "" {
			l.ContactEmail = utils.RedactedPlaceholder
		}
		l.VideoURL = ""
		l.VerificationDocumentURL = ""
	case models.ItemKindRoommate:
		r := c.Roommate
		r.CompleteAddress = utils.RedactedPlaceholder
		r.OwnerName = utils.RedactedPlaceholder
		r.ContactPhone = utils.RedactedPlaceholder
		if r.ContactEmail != "" {
			r.ContactEmail = utils.RedactedPlaceholder
		}
		r.VerificationDocumentURL = ""
	}
	return c
}

// publicView hides verification documents from everyone but admins, and
// everything sensitive unless the item is unlocked.
func publicView(it models.Item, unlocked bool) models.Item {
	if !unlocked {
		return Redact(it)
	}
	c := it.Clone()
	switch c.Kind {
	case models.ItemKindListing:
		c.Listing.VerificationDocumentURL = ""
	case models.ItemKindRoommate:
		c.Roommate.VerificationDocumentURL = ""
	}
	return c
}
