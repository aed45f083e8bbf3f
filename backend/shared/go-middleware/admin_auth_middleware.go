package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

type contextKey string

const (
	ContextKeyAdminID = contextKey("adminID")

	// AdminTokenCookieName follows the __Host- prefix rule (no Domain attribute allowed)
	AdminTokenCookieName = "__Host-adminToken"
)

// AdminAuthMiddleware validates an admin access token and ensures it carries
// the "admin" role. The token is read from "Authorization: Bearer" or, for
// the browser dashboard, from the admin cookie.
func AdminAuthMiddleware(signingKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractAdminToken(r)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
				)
				return
			}

			claims, vErr := ValidateToken(tokenStr, signingKey, PurposeAdminAccess)
			if vErr != nil {
				if errors.Is(vErr, jwt.ErrTokenExpired) {
					utils.RespondErrorWithCode(
						w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, vErr,
					)
					return
				}
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, vErr,
				)
				return
			}

			if claims.Subject == "" {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing subject", nil,
				)
				return
			}
			if claims.Role != RoleAdmin {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeUnauthorized, "Insufficient permissions", nil,
				)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdminID, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminIDFromContext returns the subject stored by AdminAuthMiddleware.
func AdminIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyAdminID).(string)
	return id
}

func extractAdminToken(r *http.Request) (string, error) {
	if authz := r.Header.Get("Authorization"); authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", errors.New("malformed Authorization header")
		}
		return parts[1], nil
	}
	if c, err := r.Cookie(AdminTokenCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", errors.New("missing admin token")
}
