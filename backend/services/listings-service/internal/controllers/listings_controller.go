package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/services"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type ListingsController struct {
	listings *services.ListingService
	featured *services.FeaturedService
	pricing  *services.PricingService
}

func NewListingsController(
	listings *services.ListingService,
	featured *services.FeaturedService,
	pricing *services.PricingService,
) *ListingsController {
	return &ListingsController{listings: listings, featured: featured, pricing: pricing}
}

// GET /api/v1/listings/{category}
func (c *ListingsController) ListHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "ListHandler")

	visitor, err := visitorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	category, err := services.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	fs, err := services.FilterStateFromQuery(r.URL.Query())
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}

	res, err := c.listings.ListItems(r.Context(), visitor, category, fs)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// GET /api/v1/listings/{category}/filters/default
func (c *ListingsController) DefaultFiltersHandler(w http.ResponseWriter, r *http.Request) {
	category, err := services.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.DefaultFiltersResponse{
		Category: category,
		Filters:  services.DefaultFilterState(),
		Options:  services.DefaultFilterOptions(),
	})
}

// POST /api/v1/listings/{category}/smart-sort
func (c *ListingsController) SmartSortHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SmartSortHandler")

	visitor, err := visitorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	category, err := services.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	req := dtos.SmartSortRequest{Filters: services.DefaultFilterState()}
	if !decodeAndValidate(w, r, &req, true, logger) {
		return
	}
	if req.Filters.Budget < 0 {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "budget must not be negative", nil)
		return
	}
	if req.Filters.Amenities == nil {
		req.Filters.Amenities = []string{}
	}

	res, err := c.listings.SmartSort(r.Context(), visitor, category, services.SmartSortInput{
		Filters:         req.Filters,
		Preferences:     req.UserPreferences,
		ViewingPatterns: req.ViewingPatterns,
	})
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("count", res.Count).Info("Smart sort applied")
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// GET /api/v1/listings/{category}/smart-sort/status
func (c *ListingsController) SmartSortStatusHandler(w http.ResponseWriter, r *http.Request) {
	visitor, err := visitorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	category, err := services.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, c.listings.SmartSortStatus(visitor, category))
}

// GET /api/v1/featured
func (c *ListingsController) FeaturedHandler(w http.ResponseWriter, r *http.Request) {
	visitor, err := visitorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	res, err := c.featured.Featured(r.Context(), visitor)
	if err != nil {
		utils.Logger.WithField("handler", "FeaturedHandler").WithError(err).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// GET /api/v1/pricing
func (c *ListingsController) PricingHandler(w http.ResponseWriter, r *http.Request) {
	p, err := c.pricing.Get(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

