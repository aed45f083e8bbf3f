package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	internal_utils "github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/utils"
	shared_dtos "github.com/viraj01032007/setmystay02/backend/shared/go-dtos"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

const inquiryDateLayout = "2006-01-02"

// BookingService records inquiries for vacant beds and tells the owner.
type BookingService struct {
	catalogue *Catalogue
	inquiries repositories.BookingInquiryRepository
	notifier  InquiryNotifier
}

func NewBookingService(catalogue *Catalogue, inquiries repositories.BookingInquiryRepository, notifier InquiryNotifier) *BookingService {
	return &BookingService{catalogue: catalogue, inquiries: inquiries, notifier: notifier}
}

func (s *BookingService) CreateInquiry(
	ctx context.Context,
	visitor, listingID, bedID string,
	req dtos.BookingInquiryRequest,
) (*dtos.BookingInquiryResponse, error) {
	start, end, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	it, err := s.catalogue.FindPublic(ctx, listingID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Listing")
	}
	if it.Kind != models.ItemKindListing {
		return nil, notFoundOrInternal(internal_utils.ErrItemNotFound, "Listing")
	}
	l := it.Listing

	bed := l.BedByID(bedID)
	if bed == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Bed not found", Err: internal_utils.ErrBedNotFound}
	}
	if bed.Status != models.BedVacant {
		return nil, &utils.AppError{StatusCode: http.StatusConflict, Code: internal_utils.ErrCodeBedNotVacant, Message: "This bed is already occupied", Err: internal_utils.ErrBedNotVacant}
	}

	inq := &models.BookingInquiry{
		ID:        uuid.New(),
		ListingID: l.ID,
		BedID:     bed.ID,
		Name:      strings.TrimSpace(req.Name),
		StartDate: start,
		EndDate:   end,
		VisitorID: visitorKey(visitor),
	}
	if err := s.inquiries.Create(ctx, inq); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to save inquiry", Err: err}
	}

	s.notifier.NotifyOwner(ctx, l, inq, InquiryContact{Phone: req.Phone, Email: req.Email})

	return &dtos.BookingInquiryResponse{
		ID:      inq.ID.String(),
		Title:   "Inquiry Sent!",
		Message: "Your inquiry for " + l.Title + " has been sent. The owner will contact you shortly.",
	}, nil
}

// parseStay requires two calendar dates with the end strictly after the start.
func parseStay(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, serr := time.Parse(inquiryDateLayout, strings.TrimSpace(rawStart))
	end, eerr := time.Parse(inquiryDateLayout, strings.TrimSpace(rawEnd))

	var details []shared_dtos.ValidationErrorDetail
	if serr != nil {
		details = append(details, shared_dtos.ValidationErrorDetail{Field: "start_date", Message: "Field 'start_date' must be a date in 2006-01-02 format", Code: "validation_datetime"})
	}
	if eerr != nil {
		details = append(details, shared_dtos.ValidationErrorDetail{Field: "end_date", Message: "Field 'end_date' must be a date in 2006-01-02 format", Code: "validation_datetime"})
	}
	if len(details) == 0 && !end.After(start) {
		details = append(details, shared_dtos.ValidationErrorDetail{Field: "end_date", Message: "Field 'end_date' must be after 'start_date'", Code: "validation_gtfield"})
	}
	if len(details) > 0 {
		return time.Time{}, time.Time{}, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeValidation,
			Message:    "Validation failed",
			Details:    details,
			Err:        internal_utils.ErrInvalidDates,
		}
	}
	return start, end, nil
}
