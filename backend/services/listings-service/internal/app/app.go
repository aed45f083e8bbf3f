package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/sendgrid/sendgrid-go"
	"github.com/twilio/twilio-go"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/config"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

// App holds config, storage and external clients. Every store falls back to
// an in-process implementation when its backend is not configured.
type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Redis  *repositories.RedisKVStore

	KV        repositories.KeyValueStore
	Listings  repositories.ListingRepository
	Roommates repositories.RoommateRepository
	AuditLogs repositories.AdminAuditLogRepository
	Inquiries repositories.BookingInquiryRepository

	SendGrid *sendgrid.Client
	Twilio   *twilio.RestClient
}

func NewApp(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.DBUrl != "" {
		pool, err := connectWithRetry(cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		a.DB = pool
		a.Listings = repositories.NewListingRepository(pool, cfg.DBEncryptionKey)
		a.Roommates = repositories.NewRoommateRepository(pool, cfg.DBEncryptionKey)
		a.AuditLogs = repositories.NewAdminAuditLogRepository(pool)
		a.Inquiries = repositories.NewBookingInquiryRepository(pool)
	} else {
		utils.Logger.Info("DB_URL not set; using in-memory listing storage.")
		a.Listings = repositories.NewMemoryListingRepository()
		a.Roommates = repositories.NewMemoryRoommateRepository()
		a.AuditLogs = repositories.NewMemoryAdminAuditLogRepository()
		a.Inquiries = repositories.NewMemoryBookingInquiryRepository()
	}

	switch {
	case cfg.RedisAddr != "":
		rdb := repositories.NewRedisKVStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := rdb.Ping(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("unable to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		a.Redis = rdb
		a.KV = rdb
		utils.Logger.Infof("Entitlements stored in redis at %s", cfg.RedisAddr)
	case a.DB != nil:
		a.KV = repositories.NewPostgresKVStore(a.DB)
		utils.Logger.Info("Entitlements stored in postgres kv_store")
	default:
		a.KV = repositories.NewMemoryKVStore()
		utils.Logger.Info("Entitlements stored in memory")
	}

	if cfg.SendGridAPIKey != "" {
		a.SendGrid = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		a.Twilio = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}

	return a, nil
}

func connectWithRetry(url string) (*pgxpool.Pool, error) {
	backoff := initialBackoff
	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		pool, err := newDBPool(ctx, url)
		cancel()
		if err == nil {
			utils.Logger.Infof("Successfully connected to database on attempt %d", i)
			return pool, nil
		}
		lastErr = err

		utils.Logger.WithError(err).Warnf(
			"Failed to connect to database on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)
		if i < maxRetries {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, lastErr)
}

// Ping checks every configured backend.
func (a *App) Ping(ctx context.Context) error {
	if a.DB != nil {
		if err := a.DB.Ping(ctx); err != nil {
			return fmt.Errorf("database unreachable: %w", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis unreachable: %w", err)
		}
	}
	return nil
}

// StorageSummary names the backend behind each store, for /health.
func (a *App) StorageSummary() map[string]string {
	out := map[string]string{"listings": "memory", "entitlements": "memory"}
	if a.DB != nil {
		out["listings"] = "postgres"
		out["entitlements"] = "postgres"
	}
	if a.Redis != nil {
		out["entitlements"] = "redis"
	}
	return out
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			utils.Logger.WithError(err).Warn("Failed to close redis client")
		}
	}
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("Database connection closed.")
	}
}

// newDBPool constructs the pgx pool with production-safe settings.
//
//   - MaxConnIdleTime retires idle sockets before the hosting proxy does
//   - HealthCheckPeriod keeps every conn warm
func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}
