package testhelpers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/require"
)

// GrantPlan buys plan ("unlimited" or a credit count) for visitorID.
func (h *TestHelper) GrantPlan(client *http.Client, visitorID string, plan any) {
	resp := h.DoRequest(h.BuildVisitorRequest(http.MethodPost, "/api/v1/entitlements/grant", visitorID,
		map[string]any{"plan": plan}), client)
	h.DecodeJSON(resp, http.StatusOK, nil)
}

// WaitForSortIdle polls the smart sort status until no request is in flight.
func (h *TestHelper) WaitForSortIdle(client *http.Client, visitorID, category string, maxWait time.Duration) {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		var st struct {
			State string `json:"state"`
		}
		resp := h.DoRequest(h.BuildVisitorRequest(http.MethodGet,
			fmt.Sprintf("/api/v1/listings/%s/smart-sort/status", category), visitorID, nil), client)
		h.DecodeJSON(resp, http.StatusOK, &st)
		if st.State == "idle" {
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
	require.FailNowf(h.T, "smart sort still running", "category %s did not return to idle within %v", category, maxWait)
}
