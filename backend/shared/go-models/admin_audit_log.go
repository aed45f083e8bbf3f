// backend/shared/go-models/admin_audit_log.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditApprove       AuditAction = "APPROVE"
	AuditReject        AuditAction = "REJECT"
	AuditDelete        AuditAction = "DELETE"
	AuditUpdatePricing AuditAction = "UPDATE_PRICING"
	AuditLogin         AuditAction = "LOGIN"
)

type AuditTargetType string

const (
	TargetListing  AuditTargetType = "LISTING"
	TargetRoommate AuditTargetType = "ROOMMATE"
	TargetPricing  AuditTargetType = "PRICING"
	TargetSession  AuditTargetType = "SESSION"
)

type AdminAuditLog struct {
	ID         uuid.UUID        `json:"id"`
	AdminID    string           `json:"admin_id"`
	Action     AuditAction      `json:"action"`
	TargetID   string           `json:"target_id"`
	TargetType AuditTargetType  `json:"target_type"`
	Details    *json.RawMessage `json:"details,omitempty"` // JSONB field for before/after states
	CreatedAt  time.Time        `json:"created_at"`
}
