package model

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAuditLog records account management actions taken by admins
type AdminAuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AdminID     uint           `gorm:"not null;index" json:"admin_id"`
	Action      string         `gorm:"type:varchar(100);not null" json:"action"` // e.g. "user_block", "user_group_edit"
	TargetEmail string         `gorm:"type:varchar(254);index" json:"target_email"`
	Details     datatypes.JSON `json:"details"`
	IPAddress   string         `gorm:"type:varchar(45)" json:"ip_address"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}

func (l AdminAuditLog) ToRecord() Record {
	return Record{
		"id":           l.ID,
		"admin_id":     l.AdminID,
		"action":       l.Action,
		"target_email": l.TargetEmail,
		"details":      l.Details,
		"ip_address":   l.IPAddress,
		"created_at":   l.CreatedAt,
	}
}
