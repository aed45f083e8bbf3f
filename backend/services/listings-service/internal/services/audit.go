package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// auditor writes admin audit entries. A failed write is logged and never
// fails the admin action itself.
type auditor struct {
	repo repositories.AdminAuditLogRepository
}

func (a auditor) log(ctx context.Context, adminID string, action models.AuditAction, targetType models.AuditTargetType, targetID string, details any) {
	var detailsJSON *json.RawMessage
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			msg := json.RawMessage(raw)
			detailsJSON = &msg
		}
	}
	err := a.repo.Create(ctx, &models.AdminAuditLog{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     action,
		TargetID:   targetID,
		TargetType: targetType,
		Details:    detailsJSON,
	})
	if err != nil {
		utils.Logger.WithError(err).Errorf("failed to write audit log for %s %s", action, targetID)
	}
}
