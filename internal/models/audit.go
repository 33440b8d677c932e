package models

import (
	"time"
)

// AuditLog records who changed a credit, client or setting
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"size:50;not null" json:"action"` // CREATE, PAYMENT, RENEW, ...
	Entity    string    `gorm:"size:50;not null" json:"entity"`
	EntityID  uint      `gorm:"index" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit actions
const (
	AuditActionCreate       = "CREATE"
	AuditActionUpdate       = "UPDATE"
	AuditActionPayment      = "PAYMENT"
	AuditActionMissed       = "MISSED_PAYMENT"
	AuditActionAgreement    = "AGREEMENT"
	AuditActionRenew        = "RENEW"
	AuditActionRefinance    = "REFINANCE"
	AuditActionAccept       = "ACCEPT"
	AuditActionSchedule     = "SCHEDULE"
	AuditActionDefault      = "DEFAULT"
	AuditActionLogin        = "LOGIN"
	AuditActionRecalculated = "RECALCULATED"
)
