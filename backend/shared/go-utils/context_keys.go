// go-utils/context_keys.go

package utils

// ctxKey is unexported to prevent collisions.
type ctxKey string

// CtxKeyVisitorID stores the resolved visitor id for the request.
const CtxKeyVisitorID ctxKey = "visitorID"
