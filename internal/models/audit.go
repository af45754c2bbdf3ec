package models

import (
	"time"
)

// AuditLog represents a system audit entry
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	Action    string    `gorm:"size:50;not null" json:"action"` // CREATE, UPDATE, STATUS, DELETE, DUPLICATE
	Entity    string    `gorm:"size:50;not null" json:"entity"` // Contract
	EntityID  string    `gorm:"type:varchar(36);index" json:"entityId"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ipAddress"`
	UserAgent string    `gorm:"size:255" json:"userAgent"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit actions
const (
	AuditActionCreate    = "CREATE"
	AuditActionUpdate    = "UPDATE"
	AuditActionStatus    = "STATUS"
	AuditActionDelete    = "DELETE"
	AuditActionDuplicate = "DUPLICATE"
)

// AuditEntityContract names contracts in the audit trail
const AuditEntityContract = "Contract"
