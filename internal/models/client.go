package models

import "time"

// Client is a borrower visited by a collector
type Client struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CollectorID     uint       `gorm:"not null;index" json:"collector_id"`
	ProviderID      uint       `gorm:"not null;index" json:"provider_id"`
	FullName        string     `gorm:"not null" json:"full_name"`
	Identity        string     `gorm:"index" json:"identity"`
	Phone           string     `json:"phone"`
	Address         string     `json:"address"`
	ReputationScore int        `gorm:"default:0" json:"reputation_score"`
	ScoredAt        *time.Time `json:"scored_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}
