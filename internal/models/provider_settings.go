package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionTier charges Percentage of the principal for loans in [MinAmount, MaxAmount).
// A zero MaxAmount leaves the tier unbounded.
type CommissionTier struct {
	MinAmount  decimal.Decimal `json:"min_amount"`
	MaxAmount  decimal.Decimal `json:"max_amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Unbounded returns true when the tier has no upper limit
func (t CommissionTier) Unbounded() bool {
	return t.MaxAmount.IsZero()
}

// ProviderSettings holds the lending configuration of a provider
type ProviderSettings struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	ProviderID         uint             `gorm:"uniqueIndex;not null" json:"provider_id"`
	CommissionTiers    []CommissionTier `gorm:"serializer:json;type:jsonb" json:"commission_tiers"`
	LateInterestRate   decimal.Decimal  `gorm:"type:decimal(7,4);not null;default:0" json:"late_interest_rate"`
	LateInterestActive bool             `gorm:"not null;default:false" json:"late_interest_active"`
	DefaultAfterDays   int              `gorm:"not null;default:0" json:"default_after_days"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// TableName specifies the table name for ProviderSettings
func (ProviderSettings) TableName() string {
	return "provider_settings"
}
