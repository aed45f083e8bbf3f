// backend/shared/go-repositories/admin_audit_log_repository.go
package repositories

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgtype"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
)

type AdminAuditLogRepository interface {
	Create(ctx context.Context, logEntry *models.AdminAuditLog) error
	ListRecent(ctx context.Context, limit int) ([]*models.AdminAuditLog, error)
}

type adminAuditLogRepo struct {
	db DB
}

func NewAdminAuditLogRepository(db DB) AdminAuditLogRepository {
	return &adminAuditLogRepo{db: db}
}

func (r *adminAuditLogRepo) Create(ctx context.Context, logEntry *models.AdminAuditLog) error {
	q := `
        INSERT INTO admin_audit_logs (
            id, admin_id, action, target_id, target_type, details, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, NOW())
    `
	_, err := r.db.Exec(ctx, q,
		logEntry.ID,
		logEntry.AdminID,
		logEntry.Action,
		logEntry.TargetID,
		logEntry.TargetType,
		logEntry.Details,
	)
	return err
}

func (r *adminAuditLogRepo) ListRecent(ctx context.Context, limit int) ([]*models.AdminAuditLog, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, admin_id, action, target_id, target_type, details, created_at
        FROM admin_audit_logs ORDER BY created_at DESC LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AdminAuditLog
	for rows.Next() {
		var (
			e       models.AdminAuditLog
			details pgtype.JSONB
		)
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.TargetID, &e.TargetType, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if details.Status == pgtype.Present {
			raw := json.RawMessage(details.Bytes)
			e.Details = &raw
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

type memoryAdminAuditLogRepo struct {
	mu      sync.Mutex
	entries []*models.AdminAuditLog
}

func NewMemoryAdminAuditLogRepository() AdminAuditLogRepository {
	return &memoryAdminAuditLogRepo{}
}

func (r *memoryAdminAuditLogRepo) Create(_ context.Context, logEntry *models.AdminAuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := *logEntry
	e.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, &e)
	return nil
}

func (r *memoryAdminAuditLogRepo) ListRecent(_ context.Context, limit int) ([]*models.AdminAuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.AdminAuditLog, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := *r.entries[i]
		out = append(out, &e)
	}
	return out, nil
}
