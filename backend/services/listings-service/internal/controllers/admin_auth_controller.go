package controllers

import (
	"net/http"
	"time"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/services"
	"github.com/viraj01032007/setmystay02/backend/shared/go-middleware"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type AdminAuthController struct {
	svc *services.AdminAuthService
}

func NewAdminAuthController(s *services.AdminAuthService) *AdminAuthController {
	return &AdminAuthController{svc: s}
}

// POST /api/v1/admin/login/password
func (c *AdminAuthController) PasswordHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "AdminPasswordHandler")
	var req dtos.AdminPasswordRequest
	if !decodeAndValidate(w, r, &req, false, logger) {
		return
	}
	res, err := c.svc.CheckPassword(r.Context(), req.Password)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// POST /api/v1/admin/login/pin
func (c *AdminAuthController) PINHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "AdminPINHandler")
	var req dtos.AdminPINRequest
	if !decodeAndValidate(w, r, &req, false, logger) {
		return
	}
	res, err := c.svc.CheckPIN(r.Context(), req.StepToken, req.PIN)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// POST /api/v1/admin/login/answer
// Besides the JSON body the access token is set as a host-only cookie for
// the browser dashboard.
func (c *AdminAuthController) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "AdminAnswerHandler")
	var req dtos.AdminAnswerRequest
	if !decodeAndValidate(w, r, &req, false, logger) {
		return
	}
	res, err := c.svc.CheckAnswer(r.Context(), req.StepToken, req.Answer)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminTokenCookieName,
		Value:    res.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	utils.RespondWithJSON(w, http.StatusOK, res)
}
