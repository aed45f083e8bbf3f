package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/constants"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	internal_utils "github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/utils"
	"github.com/viraj01032007/setmystay02/backend/shared/go-middleware"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

const (
	AdminStepPIN    = "pin"
	AdminStepAnswer = "answer"

	AdminSecurityQuestion = "Who are you?"
)

type AdminAuthConfig struct {
	PasswordHash   string
	PIN            string
	TOTPSecret     string
	SecurityAnswer string
	SigningKey     []byte
}

// AdminAuthService runs the three-factor admin gate: password, then PIN,
// then the security answer. Step tokens carry progress between requests.
type AdminAuthService struct {
	cfg   AdminAuthConfig
	audit auditor
}

func NewAdminAuthService(cfg AdminAuthConfig, auditRepo repositories.AdminAuditLogRepository) *AdminAuthService {
	return &AdminAuthService{cfg: cfg, audit: auditor{repo: auditRepo}}
}

func (s *AdminAuthService) CheckPassword(_ context.Context, password string) (*dtos.AdminStepResponse, error) {
	if !utils.CheckPasswordHash(password, s.cfg.PasswordHash) {
		return nil, invalidCredentials("Invalid password")
	}
	return s.nextStep(AdminStepPIN)
}

// CheckPIN accepts a TOTP code when a secret is configured, else the static PIN.
func (s *AdminAuthService) CheckPIN(_ context.Context, stepToken, pin string) (*dtos.AdminStepResponse, error) {
	if err := s.requireStep(stepToken, AdminStepPIN); err != nil {
		return nil, err
	}
	pin = strings.TrimSpace(pin)
	var ok bool
	if s.cfg.TOTPSecret != "" {
		ok = totp.Validate(pin, s.cfg.TOTPSecret)
	} else {
		ok = subtle.ConstantTimeCompare([]byte(pin), []byte(s.cfg.PIN)) == 1
	}
	if !ok {
		return nil, invalidCredentials("Invalid PIN")
	}
	resp, err := s.nextStep(AdminStepAnswer)
	if err != nil {
		return nil, err
	}
	resp.Question = AdminSecurityQuestion
	return resp, nil
}

// CheckAnswer compares case-insensitively and issues the admin access token.
func (s *AdminAuthService) CheckAnswer(ctx context.Context, stepToken, answer string) (*dtos.AdminStepResponse, error) {
	if err := s.requireStep(stepToken, AdminStepAnswer); err != nil {
		return nil, err
	}
	got := strings.ToLower(strings.TrimSpace(answer))
	want := strings.ToLower(strings.TrimSpace(s.cfg.SecurityAnswer))
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return nil, invalidCredentials("Incorrect answer")
	}

	token, err := middleware.IssueToken(s.cfg.SigningKey, constants.AdminSubject, middleware.RoleAdmin,
		middleware.PurposeAdminAccess, "", constants.AdminAccessTokenTTL)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to issue token", Err: err}
	}
	s.audit.log(ctx, constants.AdminSubject, models.AuditLogin, models.TargetSession, constants.AdminSubject, nil)
	utils.Logger.Info("admin signed in")

	return &dtos.AdminStepResponse{
		AccessToken: token,
		ExpiresIn:   int(constants.AdminAccessTokenTTL.Seconds()),
	}, nil
}

func (s *AdminAuthService) nextStep(step string) (*dtos.AdminStepResponse, error) {
	token, err := middleware.IssueToken(s.cfg.SigningKey, constants.AdminSubject, "",
		middleware.PurposeAdminStep, step, constants.AdminStepTokenTTL)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to issue token", Err: err}
	}
	return &dtos.AdminStepResponse{
		NextStep:  step,
		StepToken: token,
		ExpiresIn: int(constants.AdminStepTokenTTL.Seconds()),
	}, nil
}

// requireStep rejects a missing, expired or foreign step token, and one
// issued for a different step.
func (s *AdminAuthService) requireStep(stepToken, want string) error {
	claims, err := middleware.ValidateToken(stepToken, s.cfg.SigningKey, middleware.PurposeAdminStep)
	if err != nil {
		code := utils.ErrCodeUnauthorized
		msg := "Invalid step token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			code = utils.ErrCodeTokenExpired
			msg = "Login step expired, start again"
		}
		return &utils.AppError{StatusCode: http.StatusUnauthorized, Code: code, Message: msg, Err: err}
	}
	if claims.Step != want {
		return &utils.AppError{
			StatusCode: http.StatusUnauthorized,
			Code:       internal_utils.ErrCodeStepOrder,
			Message:    "Complete the previous login step first",
			Err:        internal_utils.ErrAdminStepOrder,
		}
	}
	return nil
}

func invalidCredentials(msg string) error {
	return &utils.AppError{
		StatusCode: http.StatusUnauthorized,
		Code:       utils.ErrCodeInvalidCredentials,
		Message:    msg,
		Err:        internal_utils.ErrWrongCredential,
	}
}
