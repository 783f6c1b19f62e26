package repository

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sahilchouksey/course-catalog/model"
)

// RecordAudit stores an admin action. details is marshalled into the
// entry's JSON column.
func (r *Repository) RecordAudit(ctx context.Context, adminID uint, action, targetEmail, ip string, details map[string]interface{}) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	entry := model.AdminAuditLog{
		AdminID:     adminID,
		Action:      action,
		TargetEmail: normalizeEmail(targetEmail),
		Details:     datatypes.JSON(raw),
		IPAddress:   ip,
	}
	return r.run(ctx, func(db *gorm.DB) error {
		entry.ID = 0
		return db.Create(&entry).Error
	})
}

// ListAuditLogs pages through audit entries, newest first. action filters
// by action name when non-empty.
func (r *Repository) ListAuditLogs(ctx context.Context, action string, req PageRequest) (*Page[model.AdminAuditLog], error) {
	return paginate[model.AdminAuditLog](ctx, r, req, "created_at DESC, id DESC", func(db *gorm.DB) *gorm.DB {
		if action != "" {
			return db.Where("action = ?", action)
		}
		return db
	})
}
