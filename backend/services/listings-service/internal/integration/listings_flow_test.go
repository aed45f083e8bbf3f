//go:build dev && integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/config"
	"github.com/viraj01032007/setmystay02/backend/shared/go-testhelpers"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

var runID = uuid.NewString()[:8]

func newHelper(t *testing.T) *testhelpers.TestHelper {
	appName := config.AppName
	if appName == "" {
		appName = "listings-service"
	}
	return testhelpers.NewTestHelper(t, appName, runID, "local")
}

type listResponse struct {
	Items []struct {
		Item     map[string]any `json:"item"`
		Unlocked bool           `json:"unlocked"`
	} `json:"items"`
	Count int `json:"count"`
}

type entitlementState struct {
	Count       int      `json:"count"`
	IsUnlimited bool     `json:"is_unlimited"`
	UnlockedIDs []string `json:"unlocked_ids"`
}

func TestBrowseAndUnlock(t *testing.T) {
	h := newHelper(t)
	client := h.NewHTTPClient()
	visitor := h.NewVisitorID()

	var list listResponse
	resp := h.DoRequest(h.BuildVisitorRequest(http.MethodGet, "/api/v1/listings/rental?budget=1000000", visitor, nil), client)
	h.DecodeJSON(resp, http.StatusOK, &list)
	require.NotZero(t, list.Count, "seeded catalogue should contain rentals")
	require.Len(t, list.Items, list.Count)

	first := list.Items[0]
	id, _ := first.Item["id"].(string)
	require.NotEmpty(t, id)
	assert.False(t, first.Unlocked)
	assert.Equal(t, utils.RedactedPlaceholder, first.Item["contact_phone"])

	// No credits yet.
	resp = h.DoRequest(h.BuildVisitorRequest(http.MethodPost, fmt.Sprintf("/api/v1/items/%s/unlock", id), visitor, nil), client)
	var errBody utils.ErrorResponse
	h.DecodeJSON(resp, http.StatusPaymentRequired, &errBody)
	assert.Equal(t, "insufficient_credits", errBody.Code)

	h.GrantPlan(client, visitor, 1)

	var unlock struct {
		Outcome   string `json:"outcome"`
		Remaining int    `json:"remaining"`
	}
	resp = h.DoRequest(h.BuildVisitorRequest(http.MethodPost, fmt.Sprintf("/api/v1/items/%s/unlock", id), visitor, nil), client)
	h.DecodeJSON(resp, http.StatusOK, &unlock)
	assert.Equal(t, "unlocked", unlock.Outcome)
	assert.Equal(t, 0, unlock.Remaining)

	// Idempotent.
	resp = h.DoRequest(h.BuildVisitorRequest(http.MethodPost, fmt.Sprintf("/api/v1/items/%s/unlock", id), visitor, nil), client)
	h.DecodeJSON(resp, http.StatusOK, &unlock)
	assert.Equal(t, "already_unlocked", unlock.Outcome)

	var details struct {
		Item     map[string]any `json:"item"`
		Unlocked bool           `json:"unlocked"`
	}
	resp = h.DoRequest(h.BuildVisitorRequest(http.MethodGet, "/api/v1/items/"+id, visitor, nil), client)
	h.DecodeJSON(resp, http.StatusOK, &details)
	assert.True(t, details.Unlocked)
	assert.NotEqual(t, utils.RedactedPlaceholder, details.Item["contact_phone"])

	var state entitlementState
	resp = h.DoRequest(h.BuildVisitorRequest(http.MethodGet, "/api/v1/entitlements", visitor, nil), client)
	h.DecodeJSON(resp, http.StatusOK, &state)
	assert.Equal(t, 0, state.Count)
	assert.Equal(t, []string{id}, state.UnlockedIDs)

	// Another visitor sees nothing of this one's unlocks.
	resp = h.DoRequest(h.BuildVisitorRequest(http.MethodGet, "/api/v1/entitlements", h.NewVisitorID(), nil), client)
	h.DecodeJSON(resp, http.StatusOK, &state)
	assert.Empty(t, state.UnlockedIDs)
}

func TestBudgetFilter(t *testing.T) {
	h := newHelper(t)
	client := h.NewHTTPClient()
	visitor := h.NewVisitorID()

	var list listResponse
	resp := h.DoRequest(h.BuildVisitorRequest(http.MethodGet, "/api/v1/listings/pg?budget=8000", visitor, nil), client)
	h.DecodeJSON(resp, http.StatusOK, &list)
	for _, v := range list.Items {
		rent, _ := v.Item["rent"].(float64)
		assert.LessOrEqual(t, rent, float64(8000))
		assert.Equal(t, "PG", v.Item["property_type"])
	}

	resp = h.DoRequest(h.BuildVisitorRequest(http.MethodGet, "/api/v1/listings/pg?budget=abc", visitor, nil), client)
	h.DecodeJSON(resp, http.StatusBadRequest, nil)
}

func TestSmartSortLeavesIdle(t *testing.T) {
	h := newHelper(t)
	client := h.NewHTTPClient()
	visitor := h.NewVisitorID()

	resp := h.DoRequest(h.BuildVisitorRequest(http.MethodPost, "/api/v1/listings/roommate/smart-sort", visitor,
		map[string]any{"filters": map[string]any{"budget": 50000, "city": "Pune"}}), client)
	defer resp.Body.Close()
	// 502 is a legitimate outcome when the ranking service is unreachable.
	body := h.ReadBody(resp)
	require.Contains(t, []int{http.StatusOK, http.StatusBadGateway}, resp.StatusCode, body)

	h.WaitForSortIdle(client, visitor, "roommate", 5*time.Second)
}

func TestBedInquiryRejectsBadDates(t *testing.T) {
	h := newHelper(t)
	client := h.NewHTTPClient()
	visitor := h.NewVisitorID()

	start, end := h.StayDates(7, 30)
	resp := h.DoRequest(h.BuildVisitorRequest(http.MethodPost, "/api/v1/items/does-not-exist/beds/B1/inquiry", visitor,
		map[string]string{"name": "Integration", "start_date": start, "end_date": end}), client)
	h.DecodeJSON(resp, http.StatusNotFound, nil)

	resp = h.DoRequest(h.BuildVisitorRequest(http.MethodPost, "/api/v1/items/does-not-exist/beds/B1/inquiry", visitor,
		map[string]string{"name": "Integration", "start_date": end, "end_date": start}), client)
	h.DecodeJSON(resp, http.StatusBadRequest, nil)
}

func TestAdminDashboard(t *testing.T) {
	h := newHelper(t)
	if h.AdminPassword == "" {
		t.Skip("TEST_ADMIN_PASSWORD not set")
	}
	client := h.NewHTTPClient()
	token := h.AdminLogin(client)

	resp := h.DoRequest(h.BuildAdminRequest(http.MethodGet, "/api/v1/admin/analytics", token, nil), client)
	var analytics struct {
		TotalItems int `json:"total_items"`
	}
	h.DecodeJSON(resp, http.StatusOK, &analytics)
	assert.NotZero(t, analytics.TotalItems)

	resp = h.DoRequest(h.BuildAdminRequest(http.MethodGet, "/api/v1/admin/analytics", "", nil), h.NewHTTPClient())
	h.DecodeJSON(resp, http.StatusUnauthorized, nil)
}
