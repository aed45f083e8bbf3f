package testhelpers

import (
	"net/http"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

type adminStep struct {
	NextStep    string `json:"next_step"`
	StepToken   string `json:"step_token"`
	AccessToken string `json:"access_token"`
}

// AdminLogin walks the password, PIN and answer steps and returns the access token.
func (h *TestHelper) AdminLogin(client *http.Client) string {
	require.NotEmpty(h.T, h.AdminPassword, "TEST_ADMIN_PASSWORD env var is missing")

	var step adminStep
	resp := h.DoRequest(h.buildRequest(http.MethodPost, "/api/v1/admin/login/password",
		map[string]string{"password": h.AdminPassword}), client)
	h.DecodeJSON(resp, http.StatusOK, &step)

	pin := h.AdminPIN
	if h.AdminTOTPSecret != "" {
		pin = h.GenerateTOTPCode(h.AdminTOTPSecret)
	}
	resp = h.DoRequest(h.buildRequest(http.MethodPost, "/api/v1/admin/login/pin",
		map[string]string{"step_token": step.StepToken, "pin": pin}), client)
	h.DecodeJSON(resp, http.StatusOK, &step)

	resp = h.DoRequest(h.buildRequest(http.MethodPost, "/api/v1/admin/login/answer",
		map[string]string{"step_token": step.StepToken, "answer": h.AdminAnswer}), client)
	h.DecodeJSON(resp, http.StatusOK, &step)
	require.NotEmpty(h.T, step.AccessToken)
	return step.AccessToken
}

// GenerateTOTPCode generates a valid TOTP code for a given secret.
func (h *TestHelper) GenerateTOTPCode(secret string) string {
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(h.T, err)
	return code
}
