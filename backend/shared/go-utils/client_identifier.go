package utils

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// ClientIDType says where a VisitorID came from.
type ClientIDType string

const (
	ClientIDTypeHeader ClientIDType = "HEADER"
	ClientIDTypeIP     ClientIDType = "IP"
)

// VisitorID identifies one browser. Entitlements are scoped to it.
type VisitorID struct {
	Type  ClientIDType
	Value string
}

// GetVisitorID reads the X-Visitor-ID header; without it the caller's IP
// is used so anonymous curl users still get a stable bucket.
func GetVisitorID(r *http.Request) VisitorID {
	if raw := strings.TrimSpace(r.Header.Get(VisitorHeader)); raw != "" && len(raw) <= 128 {
		return VisitorID{Type: ClientIDTypeHeader, Value: raw}
	}
	return VisitorID{Type: ClientIDTypeIP, Value: detectIP(r)}
}

// WithVisitorID stores the visitor id on the context.
func WithVisitorID(ctx context.Context, v VisitorID) context.Context {
	return context.WithValue(ctx, CtxKeyVisitorID, v)
}

// VisitorIDFromContext returns the visitor id stored by the visitor middleware.
func VisitorIDFromContext(ctx context.Context) (VisitorID, bool) {
	v, ok := ctx.Value(CtxKeyVisitorID).(VisitorID)
	return v, ok && v.Value != ""
}

// detectIP extracts the best IP address from typical headers or RemoteAddr.
func detectIP(r *http.Request) string {
	forwardedFor := r.Header.Get("X-Forwarded-For")
	if forwardedFor != "" {
		for _, ip := range strings.Split(forwardedFor, ",") {
			cleanIP := strings.TrimSpace(ip)
			if isValidIP(cleanIP) {
				return cleanIP
			}
		}
	}

	if cf := r.Header.Get("CF-Connecting-IP"); cf != "" && isValidIP(cf) {
		return cf
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" && isValidIP(realIP) {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && isValidIP(ip) {
		return ip
	}
	return ""
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
