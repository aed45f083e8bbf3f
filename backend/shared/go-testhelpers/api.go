package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/stretchr/testify/require"

	"github.com/viraj01032007/setmystay02/backend/shared/go-middleware"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// BuildVisitorRequest builds a request scoped to one browser id. A non-nil
// body is JSON encoded.
func (h *TestHelper) BuildVisitorRequest(method, path, visitorID string, body any) *http.Request {
	req := h.buildRequest(method, path, body)
	if visitorID != "" {
		req.Header.Set(utils.VisitorHeader, visitorID)
	}
	return req
}

// BuildAdminRequest attaches the admin access token as the dashboard does,
// in the host-only cookie.
func (h *TestHelper) BuildAdminRequest(method, path, accessToken string, body any) *http.Request {
	req := h.buildRequest(method, path, body)
	if accessToken != "" {
		req.AddCookie(&http.Cookie{
			Name:  middleware.AdminTokenCookieName,
			Value: accessToken,
			Path:  "/",
		})
	}
	return req
}

func (h *TestHelper) buildRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.T, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(h.Ctx, method, h.URL(path), &buf)
	require.NoError(h.T, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewHTTPClient creates an HTTP client with a cookie jar for session management.
func (h *TestHelper) NewHTTPClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(h.T, err)
	return &http.Client{Jar: jar}
}

// DoRequest performs an HTTP request and asserts that no network-level error occurred.
func (h *TestHelper) DoRequest(req *http.Request, client *http.Client) *http.Response {
	if client.Jar != nil {
		client.Jar.SetCookies(req.URL, req.Cookies())
	}
	resp, err := client.Do(req)
	require.NoError(h.T, err, "HTTP request failed")
	return resp
}

// ReadBody reads the response body and returns it as a string for logging or inspection.
func (h *TestHelper) ReadBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return "<nil response or body>"
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	// After reading, we need to restore the body so it can be read again if needed.
	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	require.NoError(h.T, err, "Failed to read response body")
	return string(bodyBytes)
}

// DecodeJSON requires status and decodes the body into dst.
func (h *TestHelper) DecodeJSON(resp *http.Response, status int, dst any) {
	defer resp.Body.Close()
	body := h.ReadBody(resp)
	require.Equal(h.T, status, resp.StatusCode, "unexpected status, body: %s", body)
	if dst != nil {
		require.NoError(h.T, json.Unmarshal([]byte(body), dst), body)
	}
}
