package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credit represents a loan extended to a client by a provider through a collector
type Credit struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	GUID                 string           `gorm:"column:guid;uniqueIndex;not null" json:"guid"`
	ClientID             uint             `gorm:"not null;index" json:"client_id"`
	CollectorID          uint             `gorm:"not null;index" json:"collector_id"`
	ProviderID           uint             `gorm:"not null;index" json:"provider_id"`
	Principal            decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"principal"`
	CommissionAmount     decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"commission_amount"`
	InstallmentCount     int              `gorm:"not null" json:"installment_count"`
	PaidInstallments     int              `gorm:"not null;default:0" json:"paid_installments"`
	PaymentSchedule      []time.Time      `gorm:"serializer:json;type:jsonb" json:"payment_schedule"`
	Status               string           `gorm:"default:pending;not null;index" json:"status"`
	MissedPaymentDays    int              `gorm:"not null;default:0" json:"missed_payment_days"`
	AgreementAmount      *decimal.Decimal `gorm:"type:decimal(15,2)" json:"agreement_amount"`
	PredecessorCreditID  *uint            `gorm:"index" json:"predecessor_credit_id"`
	SuccessorCreditID    *uint            `json:"successor_credit_id"`
	AcceptedAt           *time.Time       `json:"accepted_at"`
	EndDate              *time.Time       `json:"end_date"`
	ContractDocumentPath *string          `json:"-"`
	Version              int              `gorm:"not null;default:1" json:"version"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`

	// Associations
	Client Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

// TableName specifies the table name for Credit
func (Credit) TableName() string {
	return "credits"
}

// Credit status constants
const (
	CreditStatusPending       = "pending"
	CreditStatusActive        = "active"
	CreditStatusPartiallyPaid = "partially_paid"
	CreditStatusPaid          = "paid"
	CreditStatusRenewed       = "renewed"
	CreditStatusRefinanced    = "refinanced"
	CreditStatusDefaulted     = "defaulted"
)

// IsOpen returns true while the credit accepts payments
func (c *Credit) IsOpen() bool {
	return c.Status == CreditStatusActive || c.Status == CreditStatusPartiallyPaid
}

// IsClosed returns true once the credit reached a terminal state
func (c *Credit) IsClosed() bool {
	switch c.Status {
	case CreditStatusPaid, CreditStatusRenewed, CreditStatusRefinanced, CreditStatusDefaulted:
		return true
	}
	return false
}

// HasCompleteSchedule returns true when every installment has a due date
func (c *Credit) HasCompleteSchedule() bool {
	return c.InstallmentCount > 0 && len(c.PaymentSchedule) == c.InstallmentCount
}

// Obligation is principal plus commission, the amount the client owes without late fees
func (c *Credit) Obligation() decimal.Decimal {
	return c.Principal.Add(c.CommissionAmount)
}

// InstallmentAmount is the scheduled amount of a single installment
func (c *Credit) InstallmentAmount() decimal.Decimal {
	if c.InstallmentCount <= 0 {
		return decimal.Zero
	}
	return c.Obligation().Div(decimal.NewFromInt(int64(c.InstallmentCount))).Round(2)
}

// InstallmentAmountAt is the amount due for installment i (zero based). The
// last installment absorbs the rounding residual so the installments add up
// to the obligation exactly.
func (c *Credit) InstallmentAmountAt(i int) decimal.Decimal {
	if i < 0 || i >= c.InstallmentCount {
		return decimal.Zero
	}
	if i < c.InstallmentCount-1 {
		return c.InstallmentAmount()
	}
	paid := c.InstallmentAmount().Mul(decimal.NewFromInt(int64(c.InstallmentCount - 1)))
	return c.Obligation().Sub(paid)
}

// NextInstallmentAmount is the amount due for the first unpaid installment
func (c *Credit) NextInstallmentAmount() decimal.Decimal {
	return c.InstallmentAmountAt(c.PaidInstallments)
}

// NextDueDate returns the due date of the first unpaid installment
func (c *Credit) NextDueDate() (time.Time, bool) {
	if c.PaidInstallments < 0 || c.PaidInstallments >= len(c.PaymentSchedule) {
		return time.Time{}, false
	}
	return c.PaymentSchedule[c.PaidInstallments], true
}

// CreditResponse is the JSON response format for credits
type CreditResponse struct {
	ID                  uint             `json:"id"`
	GUID                string           `json:"guid"`
	ClientID            uint             `json:"client_id"`
	ClientName          string           `json:"client_name,omitempty"`
	CollectorID         uint             `json:"collector_id"`
	ProviderID          uint             `json:"provider_id"`
	Principal           decimal.Decimal  `json:"principal"`
	CommissionAmount    decimal.Decimal  `json:"commission_amount"`
	InstallmentAmount   decimal.Decimal  `json:"installment_amount"`
	InstallmentCount    int              `json:"installment_count"`
	PaidInstallments    int              `json:"paid_installments"`
	PaymentSchedule     []string         `json:"payment_schedule"`
	Status              string           `json:"status"`
	MissedPaymentDays   int              `json:"missed_payment_days"`
	AgreementAmount     *decimal.Decimal `json:"agreement_amount"`
	PredecessorCreditID *uint            `json:"predecessor_credit_id"`
	SuccessorCreditID   *uint            `json:"successor_credit_id"`
	HasContract         bool             `json:"has_contract"`
	AcceptedAt          *time.Time       `json:"accepted_at"`
	EndDate             *time.Time       `json:"end_date"`
	CreatedAt           time.Time        `json:"created_at"`
}

// ToResponse converts Credit to CreditResponse
func (c *Credit) ToResponse() CreditResponse {
	resp := CreditResponse{
		ID:                  c.ID,
		GUID:                c.GUID,
		ClientID:            c.ClientID,
		CollectorID:         c.CollectorID,
		ProviderID:          c.ProviderID,
		Principal:           c.Principal,
		CommissionAmount:    c.CommissionAmount,
		InstallmentAmount:   c.InstallmentAmount(),
		InstallmentCount:    c.InstallmentCount,
		PaidInstallments:    c.PaidInstallments,
		PaymentSchedule:     make([]string, 0, len(c.PaymentSchedule)),
		Status:              c.Status,
		MissedPaymentDays:   c.MissedPaymentDays,
		AgreementAmount:     c.AgreementAmount,
		PredecessorCreditID: c.PredecessorCreditID,
		SuccessorCreditID:   c.SuccessorCreditID,
		HasContract:         c.ContractDocumentPath != nil && *c.ContractDocumentPath != "",
		AcceptedAt:          c.AcceptedAt,
		EndDate:             c.EndDate,
		CreatedAt:           c.CreatedAt,
	}
	if c.Client.ID != 0 {
		resp.ClientName = c.Client.FullName
	}
	for _, d := range c.PaymentSchedule {
		resp.PaymentSchedule = append(resp.PaymentSchedule, d.Format(DateLayout))
	}
	return resp
}

// DateLayout is the calendar date format used on the wire
const DateLayout = "2006-01-02"
