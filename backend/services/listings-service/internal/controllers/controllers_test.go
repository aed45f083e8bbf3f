package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/app"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/dtos"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/routes"
	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/services"
	"github.com/viraj01032007/setmystay02/backend/shared/go-middleware"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

var signingKey = []byte("0123456789abcdef0123456789abcdef")

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	listings := repositories.NewMemoryListingRepository()
	roommates := repositories.NewMemoryRoommateRepository()
	audit := repositories.NewMemoryAdminAuditLogRepository()
	inquiries := repositories.NewMemoryBookingInquiryRepository()
	kv := repositories.NewMemoryKVStore()

	pending := &models.Listing{ID: "pending", PropertyType: models.PropertyTypeRental, Rent: 1000, City: "Navi Mumbai", Status: models.ModerationPending}
	flat := &models.Listing{
		ID: "flat", PropertyType: models.PropertyTypeRental, Title: "Sea view flat", Rent: 20000,
		City: "Navi Mumbai", Locality: "Vashi", OwnerName: "Asha", ContactPhone: "+919820000001",
		Status: models.ModerationApproved,
	}
	hostel := &models.Listing{
		ID: "hostel", PropertyType: models.PropertyTypePG, Title: "Hostel", Rent: 8000,
		City: "Navi Mumbai", Locality: "Kharghar", ContactPhone: "+919820000005",
		Beds:   []models.Bed{{ID: "B1", Status: models.BedVacant}, {ID: "B2", Status: models.BedOccupied}},
		Status: models.ModerationApproved,
	}
	for _, l := range []*models.Listing{pending, flat, hostel} {
		require.NoError(t, listings.Create(ctx, l))
	}

	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)

	catalogue := services.NewCatalogue(listings, roommates, kv)
	ents := services.NewEntitlementService(kv)
	pricing := services.NewPricingService(kv, audit)
	smart := services.NewSmartSortService(catalogue, ents, nil, time.Second)
	listingSvc := services.NewListingService(catalogue, ents, smart, pricing)
	featured := services.NewFeaturedService(catalogue, ents)
	booking := services.NewBookingService(catalogue, inquiries, services.NewOwnerNotifier(services.NotifierConfig{}, nil, nil))
	submissions := services.NewSubmissionService(listings, roommates, pricing, true, false, nil)
	adminAuth := services.NewAdminAuthService(services.AdminAuthConfig{
		PasswordHash: hash, PIN: "2468", SecurityAnswer: "Viraj", SigningKey: signingKey,
	}, audit)
	moderation := services.NewModerationService(catalogue, listings, roommates, inquiries, audit)

	health := NewHealthController(&app.App{KV: kv})
	lc := NewListingsController(listingSvc, featured, pricing)
	ic := NewItemsController(listingSvc, booking)
	ec := NewEntitlementsController(ents)
	sc := NewSubmissionsController(submissions)
	aac := NewAdminAuthController(adminAuth)
	ac := NewAdminController(moderation, pricing)

	router := mux.NewRouter()
	router.HandleFunc(routes.Health, health.HealthCheckHandler).Methods(http.MethodGet)
	public := router.NewRoute().Subrouter()
	public.Use(middleware.VisitorMiddleware)
	public.HandleFunc(routes.Listings, lc.ListHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.ListingsDefaultFilters, lc.DefaultFiltersHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.ListingsSmartSort, lc.SmartSortHandler).Methods(http.MethodPost)
	public.HandleFunc(routes.ListingsSmartSortState, lc.SmartSortStatusHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.Featured, lc.FeaturedHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.Pricing, lc.PricingHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.ItemDetails, ic.DetailsHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.ItemUnlock, ic.UnlockHandler).Methods(http.MethodPost)
	public.HandleFunc(routes.ItemBedInquiry, ic.BedInquiryHandler).Methods(http.MethodPost)
	public.HandleFunc(routes.Submissions, sc.SubmitHandler).Methods(http.MethodPost)
	public.HandleFunc(routes.Entitlements, ec.SnapshotHandler).Methods(http.MethodGet)
	public.HandleFunc(routes.EntitlementsGrant, ec.GrantHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AdminLoginPassword, aac.PasswordHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AdminLoginPIN, aac.PINHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AdminLoginAnswer, aac.AnswerHandler).Methods(http.MethodPost)
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AdminAuthMiddleware(signingKey))
	secured.HandleFunc(routes.AdminModerationPending, ac.PendingHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminModerationApprove, ac.ApproveHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminModerationItem, ac.DeleteHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.AdminPricing, ac.UpdatePricingHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.AdminAnalytics, ac.AnalyticsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminAuditLog, ac.AuditLogHandler).Methods(http.MethodGet)
	return router
}

type call struct {
	method, path string
	body         any
	visitor      string
	bearer       string
}

func do(t *testing.T, h http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := c.body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.visitor != "" {
		req.Header.Set(utils.VisitorHeader, c.visitor)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type listBody struct {
	Count int `json:"count"`
	Items []struct {
		Item     map[string]any `json:"item"`
		Unlocked bool           `json:"unlocked"`
	} `json:"items"`
}

func TestHealth(t *testing.T) {
	rr := do(t, newRouter(t), call{method: http.MethodGet, path: "/health"})
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[dtos.HealthCheckResponse](t, rr)
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "memory", body.Storage["entitlements"])
}

func TestBrowseUnlockFlow(t *testing.T) {
	h := newRouter(t)

	rr := do(t, h, call{method: http.MethodGet, path: "/api/v1/listings/rental?budget=30000", visitor: "browser-1"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "browser-1", rr.Header().Get(utils.VisitorHeader))
	list := decode[listBody](t, rr)
	require.Equal(t, 1, list.Count, "pending items are hidden")
	assert.Equal(t, utils.RedactedPlaceholder, list.Items[0].Item["contact_phone"])

	rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/items/flat/unlock", visitor: "browser-1"})
	require.Equal(t, http.StatusPaymentRequired, rr.Code)
	errBody := decode[utils.ErrorResponse](t, rr)
	assert.Equal(t, utils.ErrCodeInsufficientCredits, errBody.Code)
	assert.Len(t, errBody.Details, 4)

	rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/entitlements/grant", visitor: "browser-1", body: `{"plan":0}`})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, utils.ErrCodeValidation, decode[utils.ErrorResponse](t, rr).Code)

	for _, huge := range []string{`{"plan":10001}`, `{"plan":9223372036854775807}`, `{"plan":"99999999999999999999"}`} {
		rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/entitlements/grant", visitor: "browser-1", body: huge})
		require.Equal(t, http.StatusBadRequest, rr.Code, huge)
		assert.Equal(t, utils.ErrCodeValidation, decode[utils.ErrorResponse](t, rr).Code, huge)
	}

	rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/entitlements/grant", visitor: "browser-1", body: `{"plan":5}`})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/items/flat/unlock", visitor: "browser-1"})
	require.Equal(t, http.StatusOK, rr.Code)
	unlock := decode[map[string]any](t, rr)
	assert.Equal(t, "You have 4 unlocks remaining.", unlock["message"])

	rr = do(t, h, call{method: http.MethodGet, path: "/api/v1/items/flat", visitor: "browser-1"})
	require.Equal(t, http.StatusOK, rr.Code)
	details := decode[map[string]any](t, rr)
	assert.Equal(t, true, details["unlocked"])

	rr = do(t, h, call{method: http.MethodGet, path: "/api/v1/entitlements", visitor: "browser-1"})
	state := decode[models.EntitlementState](t, rr)
	assert.Equal(t, 4, state.Count)
	assert.Equal(t, []string{"flat"}, state.UnlockedIDs)

	// Another browser starts from nothing.
	rr = do(t, h, call{method: http.MethodGet, path: "/api/v1/entitlements", visitor: "browser-2"})
	assert.Equal(t, 0, decode[models.EntitlementState](t, rr).Count)
}

func TestListingErrors(t *testing.T) {
	h := newRouter(t)

	rr := do(t, h, call{method: http.MethodGet, path: "/api/v1/listings/castle", visitor: "b"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, call{method: http.MethodGet, path: "/api/v1/listings/pg?budget=lots", visitor: "b"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, call{method: http.MethodGet, path: "/api/v1/items/pending", visitor: "b"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSmartSortEndpoints(t *testing.T) {
	h := newRouter(t)

	rr := do(t, h, call{method: http.MethodPost, path: "/api/v1/listings/pg/smart-sort", visitor: "b"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	list := decode[listBody](t, rr)
	assert.Equal(t, 1, list.Count)

	rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/listings/pg/smart-sort", visitor: "b", body: `{"filters":{"budget":-1}}`})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, call{method: http.MethodGet, path: "/api/v1/listings/pg/smart-sort/status", visitor: "b"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "idle", decode[map[string]any](t, rr)["state"])
}

func TestBedInquiryEndpoint(t *testing.T) {
	h := newRouter(t)
	ok := map[string]string{"name": "Priya", "start_date": "2026-11-01", "end_date": "2026-12-01", "phone": "+919820000003"}

	rr := do(t, h, call{method: http.MethodPost, path: "/api/v1/items/hostel/beds/B1/inquiry", visitor: "b", body: ok})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "Inquiry Sent!", decode[map[string]any](t, rr)["title"])

	rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/items/hostel/beds/B2/inquiry", visitor: "b", body: ok})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/items/hostel/beds/B1/inquiry", visitor: "b", body: "{"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, utils.ErrCodeInvalidPayload, decode[utils.ErrorResponse](t, rr).Code)

	rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/items/hostel/beds/B1/inquiry", visitor: "b", body: map[string]string{"name": "Priya"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, utils.ErrCodeValidation, decode[utils.ErrorResponse](t, rr).Code)
}

func TestSubmissionGoesToModeration(t *testing.T) {
	h := newRouter(t)

	rr := do(t, h, call{method: http.MethodPost, path: "/api/v1/submissions", visitor: "b", body: map[string]any{"property_type": "Castle"}})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	errBody := decode[utils.ErrorResponse](t, rr)
	assert.Equal(t, utils.ErrCodeValidation, errBody.Code)
	assert.NotEmpty(t, errBody.Details)

	rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/submissions", visitor: "b", body: map[string]any{
		"property_type": "Rental", "title": "Garden flat", "rent": 18000, "city": "Navi Mumbai",
		"locality": "Nerul", "address": "Sector 19", "owner_name": "Kabir", "phone": "9820000006",
		"description": "Quiet lane",
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sub := decode[map[string]any](t, rr)
	assert.Equal(t, "pending", sub["status"])
	id := sub["item"].(map[string]any)["id"].(string)

	token := adminLogin(t, h)

	rr = do(t, h, call{method: http.MethodGet, path: "/api/v1/admin/moderation/pending"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, call{method: http.MethodGet, path: "/api/v1/admin/moderation/pending", bearer: token})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, rr)["count"])

	rr = do(t, h, call{method: http.MethodPost, path: "/api/v1/admin/moderation/" + id + "/approve", bearer: token})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, call{method: http.MethodGet, path: "/api/v1/items/" + id, visitor: "b"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, call{method: http.MethodDelete, path: "/api/v1/admin/moderation/" + id, bearer: token})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, call{method: http.MethodGet, path: "/api/v1/admin/audit-log", bearer: token})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 3, "login, approve and delete")
}

func adminLogin(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := do(t, h, call{method: http.MethodPost, path: routes.AdminLoginPassword, body: map[string]string{"password": "hunter22"}})
	require.Equal(t, http.StatusOK, rr.Code)
	step := decode[dtos.AdminStepResponse](t, rr)

	rr = do(t, h, call{method: http.MethodPost, path: routes.AdminLoginPIN, body: map[string]string{"step_token": step.StepToken, "pin": "2468"}})
	require.Equal(t, http.StatusOK, rr.Code)
	step = decode[dtos.AdminStepResponse](t, rr)

	rr = do(t, h, call{method: http.MethodPost, path: routes.AdminLoginAnswer, body: map[string]string{"step_token": step.StepToken, "answer": "viraj"}})
	require.Equal(t, http.StatusOK, rr.Code)
	done := decode[dtos.AdminStepResponse](t, rr)
	require.NotEmpty(t, done.AccessToken)

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.AdminTokenCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	return done.AccessToken
}
