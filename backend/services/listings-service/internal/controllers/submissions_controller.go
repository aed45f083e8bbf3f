package controllers

import (
	"net/http"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/services"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type SubmissionsController struct {
	svc *services.SubmissionService
}

func NewSubmissionsController(s *services.SubmissionService) *SubmissionsController {
	return &SubmissionsController{svc: s}
}

// POST /api/v1/submissions
func (c *SubmissionsController) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SubmitHandler")
	logger.Info("Request received")

	var req dtos.SubmissionRequest
	if !decodeAndValidate(w, r, &req, false, logger) {
		return
	}

	res, err := c.svc.Submit(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("itemID", res.Item.ID()).Info("Service call successful")
	utils.RespondWithJSON(w, http.StatusCreated, res)
}
