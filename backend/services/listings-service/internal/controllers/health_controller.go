package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/app"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type HealthController struct {
	app *app.App
}

func NewHealthController(a *app.App) *HealthController {
	return &HealthController{app: a}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// Probe whichever backing stores are configured
	if err := c.app.Ping(ctx); err != nil {
		utils.Logger.WithError(err).Error("listings-service unhealthy")
		utils.RespondErrorWithCode(
			w,
			http.StatusServiceUnavailable,
			utils.ErrCodeInternal,
			"Service unhealthy",
			nil,
			err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK", Storage: c.app.StorageSummary()})
}
