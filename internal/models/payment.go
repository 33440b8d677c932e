package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an immutable record of money applied to a credit.
// Payments are append-only; balances are always derived from them.
type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreditID    uint            `gorm:"not null;index" json:"credit_id"`
	CollectorID uint            `gorm:"index" json:"collector_id"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type        string          `gorm:"not null;index" json:"type"`
	Note        *string         `gorm:"type:text" json:"note"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment type constants
const (
	PaymentTypeInstallment = "installment"
	PaymentTypeTotal       = "total"
	PaymentTypeAgreement   = "agreement"
	PaymentTypeCommission  = "commission"
	PaymentTypeInterest    = "interest"
)

// IsValidPaymentType returns true for the known payment types
func IsValidPaymentType(t string) bool {
	switch t {
	case PaymentTypeInstallment, PaymentTypeTotal, PaymentTypeAgreement, PaymentTypeCommission, PaymentTypeInterest:
		return true
	}
	return false
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID          uint            `json:"id"`
	CreditID    uint            `json:"credit_id"`
	CollectorID uint            `json:"collector_id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Note        *string         `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		CreditID:    p.CreditID,
		CollectorID: p.CollectorID,
		Date:        p.Date.Format(DateLayout),
		Amount:      p.Amount,
		Type:        p.Type,
		Description: PaymentTypeDescription(p.Type),
		Note:        p.Note,
		CreatedAt:   p.CreatedAt,
	}
}

// PaymentTypeDescription returns the Spanish label of a payment type
func PaymentTypeDescription(paymentType string) string {
	switch paymentType {
	case PaymentTypeInstallment:
		return "Cuota"
	case PaymentTypeTotal:
		return "Pago Total"
	case PaymentTypeAgreement:
		return "Acuerdo de Pago"
	case PaymentTypeCommission:
		return "Comisión"
	case PaymentTypeInterest:
		return "Intereses por Mora"
	default:
		return "Pago"
	}
}
