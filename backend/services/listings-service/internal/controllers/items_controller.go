package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/services"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type ItemsController struct {
	listings *services.ListingService
	booking  *services.BookingService
}

func NewItemsController(listings *services.ListingService, booking *services.BookingService) *ItemsController {
	return &ItemsController{listings: listings, booking: booking}
}

// GET /api/v1/items/{id}
func (c *ItemsController) DetailsHandler(w http.ResponseWriter, r *http.Request) {
	visitor, err := visitorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	res, err := c.listings.GetItemDetails(r.Context(), visitor, mux.Vars(r)["id"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// POST /api/v1/items/{id}/unlock
func (c *ItemsController) UnlockHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logger := utils.Logger.WithFields(logrus.Fields{"handler": "UnlockHandler", "itemID": id})

	visitor, err := visitorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	res, err := c.listings.UnlockItem(r.Context(), visitor, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("outcome", res.Outcome).Info("Unlock processed")
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// POST /api/v1/items/{id}/beds/{bedId}/inquiry
func (c *ItemsController) BedInquiryHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	logger := utils.Logger.WithFields(logrus.Fields{"handler": "BedInquiryHandler", "itemID": vars["id"], "bedID": vars["bedId"]})

	visitor, err := visitorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.BookingInquiryRequest
	if !decodeAndValidate(w, r, &req, false, logger) {
		return
	}

	res, err := c.booking.CreateInquiry(r.Context(), visitor, vars["id"], vars["bedId"], req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("inquiryID", res.ID).Info("Booking inquiry created")
	utils.RespondWithJSON(w, http.StatusCreated, res)
}
