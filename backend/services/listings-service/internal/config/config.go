package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	Env              string

	// Storage. Empty DBUrl / RedisAddr fall back to in-process stores.
	DBUrl           string
	DBEncryptionKey []byte
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Smart sort
	OpenAIAPIKey       string
	OpenAIModel        string
	SmartSortTimeout   time.Duration
	SmartSortPerMinute int

	// Booking notifications
	SendGridAPIKey   string
	TwilioAccountSID string
	TwilioAuthToken  string

	// Admin gate
	AdminPasswordHash   string
	AdminPIN            string
	AdminTOTPSecret     string
	AdminSecurityAnswer string
	JWTSigningKey       []byte

	FeaturedRotationSpec string

	// LaunchDarkly flags
	LDFlag_SmartSortEnabled          bool
	LDFlag_SeedDbWithTestData        bool
	LDFlag_RequireListingModeration  bool
	LDFlag_CORSHighSecurity          bool
	LDFlag_SendgridFromEmail         string
	LDFlag_SendgridSandboxMode       bool
	LDFlag_TwilioFromPhone           string
	LDFlag_ValidateContactWithTwilio bool
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second

	defaultAppName       = "listings-service"
	defaultOpenAIModel   = "gpt-4o-mini"
	minSigningKeyLength  = 32
	defaultFeaturedSpec  = "@every 10m"
	defaultSortTimeout   = 20 * time.Second
	defaultSortPerMinute = 6
)

// build-time overrides, set with -ldflags
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

// LoadConfig reads .env (if present) and the environment, snapshots feature
// flags and exits the process on any misconfiguration.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		utils.Logger.WithError(err).Warn("Failed to read .env file")
	}

	cfg, err := Load(os.Getenv)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}
	return cfg
}

// Load builds a Config from getenv. It is separated from LoadConfig so the
// rules can be exercised without touching the process environment.
func Load(getenv func(string) string) (*Config, error) {
	appName := AppName
	if appName == "" {
		appName = defaultAppName
	}
	utils.Logger.Info("Loading config for app: ", appName)

	env := getenv("ENV")
	if env == "" {
		return nil, errors.New("ENV env var is missing")
	}
	appURL := getenv("APP_URL_FROM_ANYWHERE")
	if appURL == "" {
		return nil, errors.New("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := getenv("APP_PORT")
	if appPort == "" {
		return nil, errors.New("APP_PORT env var is missing")
	}

	cfg := &Config{
		OrganizationName:     OrganizationName,
		AppName:              appName,
		AppPort:              appPort,
		AppUrl:               appURL,
		Env:                  env,
		DBUrl:                getenv("DB_URL"),
		RedisAddr:            getenv("REDIS_ADDR"),
		RedisPassword:        getenv("REDIS_PASSWORD"),
		OpenAIAPIKey:         getenv("OPENAI_API_KEY"),
		OpenAIModel:          orDefault(getenv("OPENAI_MODEL"), defaultOpenAIModel),
		SendGridAPIKey:       getenv("SENDGRID_API_KEY"),
		TwilioAccountSID:     getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      getenv("TWILIO_AUTH_TOKEN"),
		AdminPasswordHash:    getenv("ADMIN_PASSWORD_HASH"),
		AdminPIN:             getenv("ADMIN_PIN"),
		AdminTOTPSecret:      getenv("ADMIN_TOTP_SECRET"),
		AdminSecurityAnswer:  getenv("ADMIN_SECURITY_ANSWER"),
		FeaturedRotationSpec: orDefault(getenv("FEATURED_ROTATION_CRON"), defaultFeaturedSpec),
	}

	var err error
	if cfg.RedisDB, err = intOrDefault(getenv("REDIS_DB"), 0); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.SmartSortPerMinute, err = intOrDefault(getenv("SMART_SORT_PER_MINUTE"), defaultSortPerMinute); err != nil {
		return nil, fmt.Errorf("SMART_SORT_PER_MINUTE: %w", err)
	}
	cfg.SmartSortTimeout = defaultSortTimeout
	if raw := getenv("SMART_SORT_TIMEOUT"); raw != "" {
		if cfg.SmartSortTimeout, err = time.ParseDuration(raw); err != nil || cfg.SmartSortTimeout <= 0 {
			return nil, fmt.Errorf("SMART_SORT_TIMEOUT must be a positive duration, got %q", raw)
		}
	}

	if raw := getenv("DB_ENCRYPTION_KEY_BASE64"); raw != "" {
		key, err := base64.StdEncoding.DecodeString(raw)
		if err != nil || len(key) != 32 {
			return nil, errors.New("DB_ENCRYPTION_KEY_BASE64 invalid, expect a 32-byte key")
		}
		cfg.DBEncryptionKey = key
	}

	// Admin gate
	if cfg.AdminPasswordHash == "" {
		return nil, errors.New("ADMIN_PASSWORD_HASH env var is missing")
	}
	if cfg.AdminPIN == "" && cfg.AdminTOTPSecret == "" {
		return nil, errors.New("one of ADMIN_PIN or ADMIN_TOTP_SECRET is required")
	}
	if strings.TrimSpace(cfg.AdminSecurityAnswer) == "" {
		return nil, errors.New("ADMIN_SECURITY_ANSWER env var is missing")
	}
	signingKey := getenv("JWT_SIGNING_KEY")
	if len(signingKey) < minSigningKeyLength {
		return nil, fmt.Errorf("JWT_SIGNING_KEY must be at least %d bytes", minSigningKeyLength)
	}
	cfg.JWTSigningKey = []byte(signingKey)

	if err := cfg.loadFlags(getenv("LD_SDK_KEY")); err != nil {
		return nil, err
	}

	utils.Logger.Infof("Loaded config for %s (%s)", appName, env)
	return cfg, nil
}

// loadFlags snapshots LaunchDarkly flags. Without an SDK key the client runs
// offline and every flag takes its default.
func (c *Config) loadFlags(sdkKey string) error {
	var (
		ldClient *ld.LDClient
		err      error
	)
	if sdkKey == "" {
		utils.Logger.Warn("LD_SDK_KEY not set; feature flags use their defaults")
		ldClient, err = ld.MakeCustomClient("", ld.Config{Offline: true}, 0)
	} else {
		ldClient, err = ld.MakeClient(sdkKey, LDConnectionTimeout)
		if err == nil && !ldClient.Initialized() {
			ldClient.Close()
			return errors.New("LaunchDarkly client failed to initialize")
		}
	}
	if err != nil {
		return fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()

	kind, key := LDServerContextKind, LDServerContextKey
	if kind == "" {
		kind = "service"
	}
	if key == "" {
		key = c.AppName
	}
	ctx := ldcontext.NewWithKind(ldcontext.Kind(kind), key)

	boolFlag := func(name string, def bool) bool {
		v, err := ldClient.BoolVariation(name, ctx, def)
		if err != nil {
			utils.Logger.WithError(err).Warnf("%s flag error; using %t", name, def)
			return def
		}
		utils.Logger.Debugf("%s flag: %t", name, v)
		return v
	}
	stringFlag := func(name, def string) string {
		v, err := ldClient.StringVariation(name, ctx, def)
		if err != nil || v == "" {
			return def
		}
		utils.Logger.Debugf("%s flag: %s", name, v)
		return v
	}

	c.LDFlag_SmartSortEnabled = boolFlag("smart_sort_enabled", true)
	c.LDFlag_SeedDbWithTestData = boolFlag("seed_db_with_test_data", true)
	c.LDFlag_RequireListingModeration = boolFlag("require_listing_moderation", false)
	c.LDFlag_CORSHighSecurity = boolFlag("cors_high_security", c.Env == "prod")
	c.LDFlag_SendgridSandboxMode = boolFlag("sendgrid_sandbox_mode", c.Env != "prod")
	c.LDFlag_ValidateContactWithTwilio = boolFlag("validate_contact_with_twilio", false)
	c.LDFlag_SendgridFromEmail = stringFlag("sendgrid_from_email", "no-reply@setmystay.in")
	c.LDFlag_TwilioFromPhone = stringFlag("twilio_from_phone", "")
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOrDefault(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("expected a non-negative integer, got %q", raw)
	}
	return n, nil
}
