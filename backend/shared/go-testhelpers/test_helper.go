package testhelpers

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// TestHelper carries what the integration suites need to talk to a running
// listings-service: where it is and how to pass the admin gate.
type TestHelper struct {
	T       *testing.T
	Ctx     context.Context
	BaseURL string

	AdminPassword   string
	AdminPIN        string
	AdminTOTPSecret string
	AdminAnswer     string

	// From ldflags
	AppName         string
	UniqueRunNumber string
	UniqueRunnerID  string
}

// NewTestHelper reads the service address and admin credentials from the
// environment (and .env, when present). It is meant to be called once per test.
func NewTestHelper(t *testing.T, appName, uniqueRunID, uniqueRunNum string) *TestHelper {
	_ = godotenv.Load()

	baseURL := os.Getenv("APP_URL_FROM_COMPOSE_NETWORK")
	if baseURL == "" {
		baseURL = os.Getenv("APP_URL_FROM_ANYWHERE")
	}
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_COMPOSE_NETWORK env var is missing")
	}

	return &TestHelper{
		T:               t,
		Ctx:             context.Background(),
		BaseURL:         strings.TrimRight(baseURL, "/"),
		AdminPassword:   os.Getenv("TEST_ADMIN_PASSWORD"),
		AdminPIN:        os.Getenv("ADMIN_PIN"),
		AdminTOTPSecret: os.Getenv("ADMIN_TOTP_SECRET"),
		AdminAnswer:     os.Getenv("ADMIN_SECURITY_ANSWER"),
		AppName:         appName,
		UniqueRunNumber: uniqueRunNum,
		UniqueRunnerID:  uniqueRunID,
	}
}

// NewVisitorID returns a fresh browser id so every test starts with no
// unlocks and the natural listing order.
func (h *TestHelper) NewVisitorID() string {
	return "it-" + h.UniqueRunnerID + "-" + uuid.NewString()
}

// URL joins path onto the service base URL.
func (h *TestHelper) URL(path string) string {
	return h.BaseURL + path
}
