package lending

import (
	"fmt"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/statemachine"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// RenewalThreshold is half of the original obligation
func RenewalThreshold(credit *models.Credit) decimal.Decimal {
	return credit.Obligation().Div(two)
}

// CanRenew reports whether an open credit has repaid at least half of
// principal plus commission.
func CanRenew(credit *models.Credit, payments []models.Payment) bool {
	if !statemachine.NewCreditFSM(credit).Can(statemachine.EventRenew) {
		return false
	}
	return Tally(payments).PaidAmount().GreaterThanOrEqual(RenewalThreshold(credit))
}

// RenewalPrincipal returns the principal of the successor credit: what is left
// of the old one plus the new funds.
func RenewalPrincipal(credit *models.Credit, payments []models.Payment, additional decimal.Decimal) (decimal.Decimal, error) {
	if additional.IsNegative() {
		return decimal.Zero, validation("el monto adicional no puede ser negativo")
	}
	if !statemachine.NewCreditFSM(credit).Can(statemachine.EventRenew) {
		return decimal.Zero, ineligible(fmt.Sprintf("no se puede renovar un crédito en estado %s", credit.Status))
	}
	if !CanRenew(credit, payments) {
		return decimal.Zero, ineligible(fmt.Sprintf(
			"el cliente debe haber pagado al menos %s para renovar", RenewalThreshold(credit).StringFixed(2)))
	}
	principal := OutstandingBalance(credit, payments).Add(additional)
	if !principal.IsPositive() {
		return decimal.Zero, validation("el nuevo crédito debe tener un monto mayor a cero")
	}
	return principal, nil
}

// RefinancePrincipal returns the principal of a refinancing: the full debt,
// late fees included.
func RefinancePrincipal(credit *models.Credit, payments []models.Payment, li LateInterest, asOf time.Time) (decimal.Decimal, error) {
	if !statemachine.NewCreditFSM(credit).Can(statemachine.EventRefinance) {
		return decimal.Zero, ineligible(fmt.Sprintf("no se puede refinanciar un crédito en estado %s", credit.Status))
	}
	debt := TotalDebt(credit, payments, li, asOf)
	if !debt.IsPositive() {
		return decimal.Zero, ineligible("el crédito no tiene deuda pendiente para refinanciar")
	}
	return debt, nil
}

// ValidateInstallmentCount checks the number of installments of a new credit
func ValidateInstallmentCount(n int) error {
	if n <= 0 {
		return validation("el número de cuotas debe ser mayor a cero")
	}
	return nil
}

// CheckSchedulable reports whether the payment schedule of a credit may still
// be assigned: while pending, or while active with nothing paid.
func CheckSchedulable(credit *models.Credit) error {
	switch {
	case credit.Status == models.CreditStatusPending:
		return nil
	case credit.Status == models.CreditStatusActive && credit.PaidInstallments == 0:
		return nil
	}
	return ineligible("el calendario de pagos ya no puede modificarse")
}

// ValidateSchedule checks a list of due dates against the credit. Dates must
// match the installment count, be strictly increasing, and fall on or after
// both the creation date and today. The creation date is read in today's
// location.
func ValidateSchedule(credit *models.Credit, dates []time.Time, today time.Time) error {
	if len(dates) != credit.InstallmentCount {
		return validation(fmt.Sprintf(
			"el calendario debe tener %d fechas, se recibieron %d", credit.InstallmentCount, len(dates)))
	}

	created := DateOf(credit.CreatedAt.In(today.Location()))
	floor := DateOf(today)
	for i, d := range dates {
		day := DateOf(d)
		if day.Before(created) {
			return validation(fmt.Sprintf("la fecha %s es anterior a la creación del crédito", day.Format(models.DateLayout)))
		}
		if day.Before(floor) {
			return validation(fmt.Sprintf("la fecha %s ya pasó", day.Format(models.DateLayout)))
		}
		if i > 0 && !day.After(DateOf(dates[i-1])) {
			return validation("las fechas del calendario deben ser estrictamente crecientes")
		}
	}
	return nil
}

// NormalizeSchedule truncates every due date to its calendar date
func NormalizeSchedule(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = DateOf(d)
	}
	return out
}

// CheckMissedPayment reports whether a missed visit may be flagged on the credit
func CheckMissedPayment(credit *models.Credit, li LateInterest) error {
	if !li.Active {
		return ineligible("el proveedor no tiene intereses por mora activos")
	}
	if !credit.IsOpen() {
		return ineligible(fmt.Sprintf("no se puede registrar un impago en un crédito en estado %s", credit.Status))
	}
	return nil
}

// CheckAgreement validates a negotiated payoff amount
func CheckAgreement(credit *models.Credit, payments []models.Payment, li LateInterest, amount decimal.Decimal, asOf time.Time) error {
	if !amount.IsPositive() {
		return validation("el monto del acuerdo debe ser mayor a cero")
	}
	if !credit.IsOpen() {
		return ineligible(fmt.Sprintf("no se puede registrar un acuerdo en un crédito en estado %s", credit.Status))
	}
	// a renegotiation is bounded by the debt as if no agreement existed
	plain := *credit
	plain.AgreementAmount = nil
	debt := TotalDebt(&plain, payments, li, asOf)
	if amount.GreaterThan(debt) {
		return validation(fmt.Sprintf("el acuerdo no puede superar la deuda total de %s", debt.StringFixed(2)))
	}
	return nil
}

// DefaultDue reports whether an open credit has been late long enough to be
// written off. A zero threshold disables automatic defaults.
func DefaultDue(credit *models.Credit, defaultAfterDays int, asOf time.Time) bool {
	if defaultAfterDays <= 0 || !credit.IsOpen() {
		return false
	}
	days := max(ScheduleDaysLate(credit, asOf), credit.MissedPaymentDays)
	return days >= defaultAfterDays
}
