package lending

import (
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/shopspring/decimal"
)

// LateInterest is the provider's late-interest configuration
type LateInterest struct {
	Rate   decimal.Decimal // percent per day of lateness
	Active bool
}

// LateInterestOf extracts the late-interest configuration from provider settings.
// Missing settings mean late interest is off.
func LateInterestOf(s *models.ProviderSettings) LateInterest {
	if s == nil {
		return LateInterest{Rate: decimal.Zero}
	}
	return LateInterest{Rate: s.LateInterestRate, Active: s.LateInterestActive}
}

// LateCharge is the lateness of a credit as of a given date.
//
// ChargeableDays is max(ScheduleDaysLate, MissedPaymentDays) and is the only
// day count used to price the late fee.
type LateCharge struct {
	NextDueDate       *time.Time      `json:"next_due_date"`
	ScheduleDaysLate  int             `json:"schedule_days_late"`
	MissedPaymentDays int             `json:"missed_payment_days"`
	ChargeableDays    int             `json:"chargeable_days"`
	DailyFee          decimal.Decimal `json:"daily_fee"`
	LateFee           decimal.Decimal `json:"late_fee"`
}

// DateOf truncates t to its calendar date
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b (negative if b is before a)
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// ScheduleDaysLate counts the calendar days asOf is past the next unpaid due date.
func ScheduleDaysLate(credit *models.Credit, asOf time.Time) int {
	due, ok := credit.NextDueDate()
	if !ok {
		return 0
	}
	days := DaysBetween(due, asOf)
	if days < 0 {
		return 0
	}
	return days
}

// ComputeLateCharge prices the lateness of an open credit. Closed or pending
// credits accrue nothing.
func ComputeLateCharge(credit *models.Credit, li LateInterest, asOf time.Time) LateCharge {
	charge := LateCharge{
		MissedPaymentDays: credit.MissedPaymentDays,
		DailyFee:          decimal.Zero,
		LateFee:           decimal.Zero,
	}
	if due, ok := credit.NextDueDate(); ok {
		charge.NextDueDate = &due
	}
	if !credit.IsOpen() {
		return charge
	}

	charge.ScheduleDaysLate = ScheduleDaysLate(credit, asOf)
	charge.ChargeableDays = max(charge.ScheduleDaysLate, charge.MissedPaymentDays)

	if !li.Active || !li.Rate.IsPositive() {
		return charge
	}

	daily := credit.InstallmentAmount().Mul(li.Rate).Div(hundred)
	charge.DailyFee = daily.Round(2)
	charge.LateFee = daily.Mul(decimal.NewFromInt(int64(charge.ChargeableDays))).Round(2)
	return charge
}
