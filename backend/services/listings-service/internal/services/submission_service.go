package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/constants"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	shared_dtos "github.com/viraj01032007/setmystay02/backend/shared/go-dtos"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// SubmissionService publishes listings from the list-your-property form.
type SubmissionService struct {
	listings          repositories.ListingRepository
	roommates         repositories.RoommateRepository
	pricing           *PricingService
	requireModeration bool
	checkContacts     bool
	twilioClient      *twilio.RestClient
}

// NewSubmissionService wires the form handler. With checkContacts set, phone
// numbers go through Twilio Lookups (when tw is non-nil) and e-mail domains
// must have MX records.
func NewSubmissionService(
	listings repositories.ListingRepository,
	roommates repositories.RoommateRepository,
	pricing *PricingService,
	requireModeration bool,
	checkContacts bool,
	tw *twilio.RestClient,
) *SubmissionService {
	return &SubmissionService{
		listings:          listings,
		roommates:         roommates,
		pricing:           pricing,
		requireModeration: requireModeration,
		checkContacts:     checkContacts,
		twilioClient:      tw,
	}
}

// Submit validates contacts, charges the (mock) listing fee and stores the
// new item at the front of its collection.
func (s *SubmissionService) Submit(ctx context.Context, req dtos.SubmissionRequest) (*dtos.SubmissionResponse, error) {
	phone, err := s.checkContact(ctx, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}

	pt := models.PropertyType(req.PropertyType)
	category := pt.Category()
	pricing, err := s.pricing.Get(ctx)
	if err != nil {
		return nil, err
	}

	status := models.ModerationApproved
	if s.requireModeration {
		status = models.ModerationPending
	}

	var item models.Item
	if pt == models.PropertyTypeRoommate {
		r := s.newRoommate(req, phone, status)
		if err := s.roommates.Create(ctx, r); err != nil {
			return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to save listing", Err: err}
		}
		item = models.RoommateItem(r)
	} else {
		l := s.newListing(req, pt, phone, status)
		if err := s.listings.Create(ctx, l); err != nil {
			return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to save listing", Err: err}
		}
		item = models.ListingItem(l)
	}

	utils.Logger.WithFields(logrus.Fields{
		"itemID":   item.ID(),
		"category": category,
		"status":   status,
	}).Info("listing submitted")

	msg := "Your property is now live."
	if status == models.ModerationPending {
		msg = "Your property will go live once it has been reviewed."
	}
	return &dtos.SubmissionResponse{
		Item:     item,
		Status:   status,
		Fee:      pricing.ListingPlans[category],
		Currency: pricing.Currency,
		Title:    "Listing Submitted!",
		Message:  msg,
	}, nil
}

func (s *SubmissionService) checkContact(ctx context.Context, rawPhone, email string) (string, error) {
	phone, err := utils.NormalizeIndianPhone(rawPhone)
	if err != nil {
		return "", contactInvalid("phone", "Field 'phone' must be a valid Indian mobile number", err)
	}
	if s.checkContacts && s.twilioClient != nil {
		ok, lerr := utils.ValidatePhoneNumber(ctx, phone, utils.Ptr("IN"), s.twilioClient)
		switch {
		case lerr != nil:
			utils.Logger.WithError(lerr).Warn("phone lookup unavailable; accepting number")
		case !ok:
			return "", contactInvalid("phone", "Field 'phone' is not a reachable number", utils.ErrInvalidPhone)
		}
	}
	if email != "" && !utils.ValidateEmail(ctx, email, s.checkContacts) {
		return "", contactInvalid("email", "Field 'email' must be a valid email address", utils.ErrInvalidEmail)
	}
	return phone, nil
}

func contactInvalid(field, message string, err error) error {
	return &utils.AppError{
		StatusCode: http.StatusBadRequest,
		Code:       utils.ErrCodeValidation,
		Message:    "Validation failed",
		Details: []shared_dtos.ValidationErrorDetail{{
			Field:   field,
			Message: message,
			Code:    "validation_" + field,
		}},
		Err: err,
	}
}

func (s *SubmissionService) newListing(req dtos.SubmissionRequest, pt models.PropertyType, phone string, status models.ModerationStatus) *models.Listing {
	l := &models.Listing{
		ID:                      uuid.NewString(),
		PropertyType:            pt,
		Title:                   strings.TrimSpace(req.Title),
		Rent:                    req.Rent,
		Area:                    orInt(req.Area, constants.DefaultArea),
		City:                    req.City,
		Locality:                req.Locality,
		State:                   constants.DefaultState,
		CompleteAddress:         req.Address,
		PartialAddress:          req.Locality + ", " + req.City,
		OwnerName:               req.OwnerName,
		ContactPhone:            phone,
		ContactEmail:            req.Email,
		Description:             req.Description,
		FurnishedStatus:         models.FurnishedStatus(orString(req.FurnishedStatus, string(models.FurnishedStatusFurnished))),
		Amenities:               nonNil(req.Amenities),
		Size:                    orString(req.Size, constants.DefaultSize),
		Images:                  req.Images,
		VideoURL:                req.VideoURL,
		OwnerID:                 constants.DefaultOwnerID,
		BrokerStatus:            models.BrokerStatus(orString(req.BrokerStatus, string(models.BrokerStatusWithoutBroker))),
		VerificationDocumentURL: req.VerificationDocumentURL,
		Status:                  status,
		CreatedAt:               time.Now().UTC(),
	}
	if len(l.Images) == 0 {
		l.Images = []string{utils.PlaceholderImageURL}
	}
	if pt == models.PropertyTypePG {
		for i := 1; i <= req.BedCount; i++ {
			l.Beds = append(l.Beds, models.Bed{ID: fmt.Sprintf("B%d", i), Status: models.BedVacant})
		}
	}
	return l
}

func (s *SubmissionService) newRoommate(req dtos.SubmissionRequest, phone string, status models.ModerationStatus) *models.RoommateProfile {
	r := &models.RoommateProfile{
		ID:                      uuid.NewString(),
		PropertyType:            models.PropertyTypeRoommate,
		OwnerName:               req.OwnerName,
		Age:                     orInt(req.Age, constants.DefaultRoommateAge),
		Rent:                    req.Rent,
		City:                    req.City,
		Locality:                req.Locality,
		State:                   constants.DefaultState,
		CompleteAddress:         req.Address,
		PartialAddress:          req.Locality + ", " + req.City,
		ContactPhone:            phone,
		ContactEmail:            req.Email,
		Description:             req.Description,
		Preferences:             nonNil(req.Preferences),
		Gender:                  orString(req.Gender, constants.DefaultRoommateGender),
		Images:                  req.Images,
		OwnerID:                 constants.DefaultOwnerID,
		VerificationDocumentURL: req.VerificationDocumentURL,
		HasProperty:             true,
		Status:                  status,
		CreatedAt:               time.Now().UTC(),
	}
	if len(r.Images) == 0 {
		r.Images = []string{constants.RoommatePlaceholderImg}
	}
	return r
}

func orString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
