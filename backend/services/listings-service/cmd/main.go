package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/app"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/config"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/controllers"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/routes"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/services"
	"github.com/viraj01032007/setmystay02/backend/shared/go-middleware"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

const smartSortBurst = 2

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize listings-service:", err)
	}
	defer application.Close()

	if cfg.LDFlag_SeedDbWithTestData {
		if err := application.SeedTestData(context.Background()); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	var ranker services.Ranker = services.PassthroughRanker{}
	if cfg.LDFlag_SmartSortEnabled {
		if r := services.NewOpenAIRanker(cfg.OpenAIAPIKey, cfg.OpenAIModel); r != nil {
			ranker = r
		} else {
			utils.Logger.Warn("OPENAI_API_KEY not set; smart sort keeps the natural order")
		}
	}

	catalogue := services.NewCatalogue(application.Listings, application.Roommates, application.KV)
	entitlementSvc := services.NewEntitlementService(application.KV)
	pricingSvc := services.NewPricingService(application.KV, application.AuditLogs)
	smartSortSvc := services.NewSmartSortService(catalogue, entitlementSvc, ranker, cfg.SmartSortTimeout)
	listingSvc := services.NewListingService(catalogue, entitlementSvc, smartSortSvc, pricingSvc)
	featuredSvc := services.NewFeaturedService(catalogue, entitlementSvc)
	notifier := services.NewOwnerNotifier(services.NotifierConfig{
		OrganizationName: cfg.OrganizationName,
		FromEmail:        cfg.LDFlag_SendgridFromEmail,
		SandboxMode:      cfg.LDFlag_SendgridSandboxMode,
		FromPhone:        cfg.LDFlag_TwilioFromPhone,
	}, application.SendGrid, application.Twilio)
	bookingSvc := services.NewBookingService(catalogue, application.Inquiries, notifier)
	submissionSvc := services.NewSubmissionService(
		application.Listings,
		application.Roommates,
		pricingSvc,
		cfg.LDFlag_RequireListingModeration,
		cfg.LDFlag_ValidateContactWithTwilio,
		application.Twilio,
	)
	adminAuthSvc := services.NewAdminAuthService(services.AdminAuthConfig{
		PasswordHash:   cfg.AdminPasswordHash,
		PIN:            cfg.AdminPIN,
		TOTPSecret:     cfg.AdminTOTPSecret,
		SecurityAnswer: cfg.AdminSecurityAnswer,
		SigningKey:     cfg.JWTSigningKey,
	}, application.AuditLogs)
	moderationSvc := services.NewModerationService(
		catalogue,
		application.Listings,
		application.Roommates,
		application.Inquiries,
		application.AuditLogs,
	)

	healthController := controllers.NewHealthController(application)
	listingsController := controllers.NewListingsController(listingSvc, featuredSvc, pricingSvc)
	itemsController := controllers.NewItemsController(listingSvc, bookingSvc)
	entitlementsController := controllers.NewEntitlementsController(entitlementSvc)
	submissionsController := controllers.NewSubmissionsController(submissionSvc)
	adminAuthController := controllers.NewAdminAuthController(adminAuthSvc)
	adminController := controllers.NewAdminController(moderationSvc, pricingSvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sortLimiter := middleware.NewVisitorRateLimiter(cfg.SmartSortPerMinute, smartSortBurst)
	go sortLimiter.Run(ctx)

	router := mux.NewRouter()
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	// Visitor scoped
	public := router.NewRoute().Subrouter()
	public.Use(middleware.VisitorMiddleware)

	public.HandleFunc(routes.Listings, listingsController.ListHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.ListingsDefaultFilters, listingsController.DefaultFiltersHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.ListingsSmartSortState, listingsController.SmartSortStatusHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.Featured, listingsController.FeaturedHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.Pricing, listingsController.PricingHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.ItemDetails, itemsController.DetailsHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.ItemUnlock, itemsController.UnlockHandler).Methods(http.MethodPost)
	public.HandleFunc(routes.ItemBedInquiry, itemsController.BedInquiryHandler).Methods(http.MethodPost)
	public.HandleFunc(routes.Submissions, submissionsController.SubmitHandler).Methods(http.MethodPost)
	public.HandleFunc(routes.Entitlements, entitlementsController.SnapshotHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.EntitlementsGrant, entitlementsController.GrantHandler).Methods(http.MethodPost)

	limited := public.NewRoute().Subrouter()
	limited.Use(sortLimiter.Middleware)
	limited.HandleFunc(routes.ListingsSmartSort, listingsController.SmartSortHandler).Methods(http.MethodPost)

	// Admin gate
	router.HandleFunc(routes.AdminLoginPassword, adminAuthController.PasswordHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AdminLoginPIN, adminAuthController.PINHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AdminLoginAnswer, adminAuthController.AnswerHandler).Methods(http.MethodPost)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AdminAuthMiddleware(cfg.JWTSigningKey))

	secured.HandleFunc(routes.AdminModerationPending, adminController.PendingHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminModerationApprove, adminController.ApproveHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminModerationReject, adminController.RejectHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminModerationItem, adminController.DeleteHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.AdminPricing, adminController.GetPricingHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminPricing, adminController.UpdatePricingHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.AdminAnalytics, adminController.AnalyticsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminAuditLog, adminController.AuditLogHandler).Methods(http.MethodGet)

	c := cron.New()
	_, rotErr := c.AddFunc(cfg.FeaturedRotationSpec, func() {
		if e := featuredSvc.Rotate(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Featured rotation failed")
		}
	})
	if rotErr != nil {
		utils.Logger.WithError(rotErr).Fatal("Failed to schedule featured rotation cron")
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", utils.VisitorHeader},
		ExposedHeaders:   []string{utils.VisitorHeader},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("listings-service failed to start:", err)
	}
}
