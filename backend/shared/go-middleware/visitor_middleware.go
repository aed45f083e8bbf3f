package middleware

import (
	"net/http"

	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// VisitorMiddleware resolves the caller's visitor id and stores it on the
// request context. The id is echoed back so clients that did not send one
// can persist the fallback.
func VisitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := utils.GetVisitorID(r)
		if v.Value == "" {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
				"Missing "+utils.VisitorHeader+" header", nil,
			)
			return
		}
		w.Header().Set(utils.VisitorHeader, v.Value)
		next.ServeHTTP(w, r.WithContext(utils.WithVisitorID(r.Context(), v)))
	})
}
