package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records state changes and back-office actions. Rows are append-only.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AdminID    *uint          `gorm:"index" json:"adminId,omitempty"`
	Action     string         `gorm:"size:100;not null;index" json:"action"`
	Resource   string         `gorm:"size:100;index:idx_audit_resource" json:"resource"`
	ResourceID string         `gorm:"size:128;index:idx_audit_resource" json:"resourceId"`
	Channel    string         `gorm:"size:20" json:"channel,omitempty"`
	IP         string         `gorm:"size:45" json:"ip,omitempty"`
	UserAgent  string         `gorm:"size:512" json:"userAgent,omitempty"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
