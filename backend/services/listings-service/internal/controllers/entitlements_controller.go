package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/services"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type EntitlementsController struct {
	svc services.EntitlementService
}

func NewEntitlementsController(s services.EntitlementService) *EntitlementsController {
	return &EntitlementsController{svc: s}
}

// GET /api/v1/entitlements
func (c *EntitlementsController) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	visitor, err := visitorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	state, err := c.svc.Snapshot(r.Context(), visitor)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, state)
}

// POST /api/v1/entitlements/grant
// The purchase itself is simulated; the plan is trusted.
func (c *EntitlementsController) GrantHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "GrantHandler")

	visitor, err := visitorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, models.ErrInvalidPlan) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, models.ErrInvalidPlan.Error(), nil, err)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}

	res, err := c.svc.Grant(r.Context(), visitor, req.Plan)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("plan", req.Plan.String()).Info("Plan granted")
	utils.RespondWithJSON(w, http.StatusOK, res)
}
