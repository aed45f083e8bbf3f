package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/constants"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// ModerationService backs the admin dashboard.
type ModerationService struct {
	catalogue *Catalogue
	listings  repositories.ListingRepository
	roommates repositories.RoommateRepository
	inquiries repositories.BookingInquiryRepository
	auditRepo repositories.AdminAuditLogRepository
	audit     auditor
}

func NewModerationService(
	catalogue *Catalogue,
	listings repositories.ListingRepository,
	roommates repositories.RoommateRepository,
	inquiries repositories.BookingInquiryRepository,
	auditRepo repositories.AdminAuditLogRepository,
) *ModerationService {
	return &ModerationService{
		catalogue: catalogue,
		listings:  listings,
		roommates: roommates,
		inquiries: inquiries,
		auditRepo: auditRepo,
		audit:     auditor{repo: auditRepo},
	}
}

func (s *ModerationService) Pending(ctx context.Context) (*dtos.PendingResponse, error) {
	ls, err := s.listings.ListByStatus(ctx, models.ModerationPending)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load pending listings", Err: err}
	}
	rs, err := s.roommates.ListByStatus(ctx, models.ModerationPending)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load pending roommates", Err: err}
	}
	if ls == nil {
		ls = []*models.Listing{}
	}
	if rs == nil {
		rs = []*models.RoommateProfile{}
	}
	return &dtos.PendingResponse{Listings: ls, Roommates: rs, Count: len(ls) + len(rs)}, nil
}

func (s *ModerationService) Approve(ctx context.Context, adminID, id, reason string) (models.Item, error) {
	return s.setStatus(ctx, adminID, id, models.ModerationApproved, models.AuditApprove, reason)
}

func (s *ModerationService) Reject(ctx context.Context, adminID, id, reason string) (models.Item, error) {
	return s.setStatus(ctx, adminID, id, models.ModerationRejected, models.AuditReject, reason)
}

func (s *ModerationService) setStatus(
	ctx context.Context,
	adminID, id string,
	status models.ModerationStatus,
	action models.AuditAction,
	reason string,
) (models.Item, error) {
	it, err := s.catalogue.Find(ctx, id)
	if err != nil {
		return models.Item{}, notFoundOrInternal(err, "Item")
	}
	before := it.Status()

	switch it.Kind {
	case models.ItemKindListing:
		err = s.listings.UpdateWithRetry(ctx, id, func(l *models.Listing) error {
			l.Status = status
			return nil
		})
	case models.ItemKindRoommate:
		err = s.roommates.UpdateWithRetry(ctx, id, func(r *models.RoommateProfile) error {
			r.Status = status
			return nil
		})
	}
	if err != nil {
		return models.Item{}, updateFailed(err)
	}

	updated, err := s.catalogue.Find(ctx, id)
	if err != nil {
		return models.Item{}, notFoundOrInternal(err, "Item")
	}
	s.audit.log(ctx, adminID, action, targetTypeOf(it), id, map[string]any{
		"from":   before,
		"to":     status,
		"reason": reason,
	})
	utils.Logger.WithFields(logrus.Fields{"itemID": id, "status": status}).Info("moderation status changed")
	return updated, nil
}

func (s *ModerationService) Delete(ctx context.Context, adminID, id string) error {
	it, err := s.catalogue.Find(ctx, id)
	if err != nil {
		return notFoundOrInternal(err, "Item")
	}
	switch it.Kind {
	case models.ItemKindListing:
		err = s.listings.Delete(ctx, id)
	case models.ItemKindRoommate:
		err = s.roommates.Delete(ctx, id)
	}
	if err != nil {
		return notFoundOrInternal(err, "Item")
	}
	s.audit.log(ctx, adminID, models.AuditDelete, targetTypeOf(it), id, map[string]any{
		"property_type": propertyTypeOf(it),
		"status":        it.Status(),
	})
	utils.Logger.WithField("itemID", id).Info("item deleted")
	return nil
}

type CategoryStats struct {
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
	Views    int `json:"views"`
}

type Analytics struct {
	Categories       map[models.Category]*CategoryStats `json:"categories"`
	TotalItems       int                                `json:"total_items"`
	TotalViews       int                                `json:"total_views"`
	BookingInquiries int                                `json:"booking_inquiries"`
}

func (s *ModerationService) Analytics(ctx context.Context) (*Analytics, error) {
	ls, err := s.listings.List(ctx)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load listings", Err: err}
	}
	rs, err := s.roommates.List(ctx)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load roommates", Err: err}
	}
	inquiries, err := s.inquiries.Count(ctx)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to count inquiries", Err: err}
	}

	a := &Analytics{Categories: make(map[models.Category]*CategoryStats, len(models.AllCategories)), BookingInquiries: inquiries}
	for _, c := range models.AllCategories {
		a.Categories[c] = &CategoryStats{}
	}
	add := func(it models.Item) {
		st := a.Categories[it.Category()]
		switch it.Status() {
		case models.ModerationApproved:
			st.Approved++
		case models.ModerationPending:
			st.Pending++
		case models.ModerationRejected:
			st.Rejected++
		}
		st.Views += it.Views()
		a.TotalItems++
		a.TotalViews += it.Views()
	}
	for _, l := range ls {
		add(models.ListingItem(l))
	}
	for _, r := range rs {
		add(models.RoommateItem(r))
	}
	return a, nil
}

func (s *ModerationService) AuditLog(ctx context.Context) ([]*models.AdminAuditLog, error) {
	entries, err := s.auditRepo.ListRecent(ctx, constants.AuditLogPageSize)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load audit log", Err: err}
	}
	if entries == nil {
		entries = []*models.AdminAuditLog{}
	}
	return entries, nil
}

func targetTypeOf(it models.Item) models.AuditTargetType {
	if it.Kind == models.ItemKindRoommate {
		return models.TargetRoommate
	}
	return models.TargetListing
}

func propertyTypeOf(it models.Item) models.PropertyType {
	if it.Kind == models.ItemKindRoommate {
		return models.PropertyTypeRoommate
	}
	return it.Listing.PropertyType
}

func updateFailed(err error) error {
	if errors.Is(err, utils.ErrRowVersionConflict) {
		return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeRowVersionConflict, Message: "Item changed concurrently, try again", Err: err}
	}
	return notFoundOrInternal(err, "Item")
}
