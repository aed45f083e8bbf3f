package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/services"
	"github.com/viraj01032007/setmystay02/backend/shared/go-middleware"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type AdminController struct {
	moderation *services.ModerationService
	pricing    *services.PricingService
}

func NewAdminController(m *services.ModerationService, p *services.PricingService) *AdminController {
	return &AdminController{moderation: m, pricing: p}
}

func (c *AdminController) getAdminID(r *http.Request) (string, error) {
	adminID := middleware.AdminIDFromContext(r.Context())
	if adminID == "" {
		return "", &utils.AppError{StatusCode: http.StatusUnauthorized, Code: utils.ErrCodeUnauthorized, Message: "Missing adminID in context"}
	}
	return adminID, nil
}

// GET /api/v1/admin/moderation/pending
func (c *AdminController) PendingHandler(w http.ResponseWriter, r *http.Request) {
	res, err := c.moderation.Pending(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// POST /api/v1/admin/moderation/{id}/approve
func (c *AdminController) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	c.moderate(w, r, "ApproveHandler", c.moderation.Approve)
}

// POST /api/v1/admin/moderation/{id}/reject
func (c *AdminController) RejectHandler(w http.ResponseWriter, r *http.Request) {
	c.moderate(w, r, "RejectHandler", c.moderation.Reject)
}

func (c *AdminController) moderate(
	w http.ResponseWriter,
	r *http.Request,
	handler string,
	fn func(ctx context.Context, adminID, id, reason string) (models.Item, error),
) {
	id := mux.Vars(r)["id"]
	logger := utils.Logger.WithFields(logrus.Fields{"handler": handler, "itemID": id})

	adminID, err := c.getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.ModerationRequest
	if !decodeAndValidate(w, r, &req, true, logger) {
		return
	}

	item, err := fn(r.Context(), adminID, id, req.Reason)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("status", item.Status()).Info("Service call successful")
	utils.RespondWithJSON(w, http.StatusOK, item)
}

// DELETE /api/v1/admin/moderation/{id}
func (c *AdminController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	adminID, err := c.getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if err := c.moderation.Delete(r.Context(), adminID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/admin/pricing
func (c *AdminController) GetPricingHandler(w http.ResponseWriter, r *http.Request) {
	p, err := c.pricing.Get(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// PUT /api/v1/admin/pricing
func (c *AdminController) UpdatePricingHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "UpdatePricingHandler")

	adminID, err := c.getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.PricingRequest
	if !decodeAndValidate(w, r, &req, false, logger) {
		return
	}

	p, err := c.pricing.Update(r.Context(), adminID, models.Pricing{
		Currency:     req.Currency,
		UnlockPlans:  req.UnlockPlans,
		ListingPlans: req.ListingPlans,
	})
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.Info("Pricing updated")
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// GET /api/v1/admin/analytics
func (c *AdminController) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	res, err := c.moderation.Analytics(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// GET /api/v1/admin/audit-log
func (c *AdminController) AuditLogHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := c.moderation.AuditLog(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, entries)
}
