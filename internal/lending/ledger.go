package lending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/statemachine"
	"github.com/shopspring/decimal"
)

// Totals is a payment history folded by payment type
type Totals struct {
	Installment decimal.Decimal
	Total       decimal.Decimal
	Agreement   decimal.Decimal
	Commission  decimal.Decimal
	Interest    decimal.Decimal
	HasTotal    bool
}

// PaidAmount is the money debited from the loan balance
func (t Totals) PaidAmount() decimal.Decimal {
	return t.Installment.Add(t.Total).Add(t.Agreement)
}

// Tally folds the payments of a credit by type
func Tally(payments []models.Payment) Totals {
	t := Totals{
		Installment: decimal.Zero,
		Total:       decimal.Zero,
		Agreement:   decimal.Zero,
		Commission:  decimal.Zero,
		Interest:    decimal.Zero,
	}
	for _, p := range payments {
		switch p.Type {
		case models.PaymentTypeInstallment:
			t.Installment = t.Installment.Add(p.Amount)
		case models.PaymentTypeTotal:
			t.Total = t.Total.Add(p.Amount)
			t.HasTotal = true
		case models.PaymentTypeAgreement:
			t.Agreement = t.Agreement.Add(p.Amount)
		case models.PaymentTypeCommission:
			t.Commission = t.Commission.Add(p.Amount)
		case models.PaymentTypeInterest:
			t.Interest = t.Interest.Add(p.Amount)
		}
	}
	return t
}

// IsSettled reports whether the payment history settles the credit outright:
// a total payoff was recorded, or agreement payments reached the agreed amount.
func IsSettled(credit *models.Credit, payments []models.Payment) bool {
	t := Tally(payments)
	if t.HasTotal {
		return true
	}
	return credit.AgreementAmount != nil && t.Agreement.GreaterThanOrEqual(*credit.AgreementAmount)
}

// OutstandingBalance is principal plus commission minus every balance-reducing
// payment, floored at zero.
func OutstandingBalance(credit *models.Credit, payments []models.Payment) decimal.Decimal {
	if IsSettled(credit, payments) {
		return decimal.Zero
	}
	balance := credit.Obligation().Sub(Tally(payments).PaidAmount())
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// TotalDebt is the payoff figure as of asOf: the outstanding balance plus the
// unpaid late fee. An agreement replaces it with what is left of the agreed
// amount, never more than the plain debt.
func TotalDebt(credit *models.Credit, payments []models.Payment, li LateInterest, asOf time.Time) decimal.Decimal {
	if IsSettled(credit, payments) {
		return decimal.Zero
	}

	unpaidFee := ComputeLateCharge(credit, li, asOf).LateFee.Sub(interestSinceDue(credit, payments))
	if unpaidFee.IsNegative() {
		unpaidFee = decimal.Zero
	}
	debt := OutstandingBalance(credit, payments).Add(unpaidFee)

	if credit.AgreementAmount != nil {
		left := credit.AgreementAmount.Sub(Tally(payments).Agreement)
		if left.IsNegative() {
			return decimal.Zero
		}
		return decimal.Min(left, debt)
	}
	return debt
}

// interestSinceDue sums the interest payments made on or after the next unpaid
// due date, the ones that count against the current late fee. Interest paid
// for an earlier late installment does not.
func interestSinceDue(credit *models.Credit, payments []models.Payment) decimal.Decimal {
	due, hasDue := credit.NextDueDate()
	sum := decimal.Zero
	for _, p := range payments {
		if p.Type != models.PaymentTypeInterest {
			continue
		}
		if hasDue && DateOf(p.Date).Before(DateOf(due)) {
			continue
		}
		sum = sum.Add(p.Amount)
	}
	return sum
}

// InstallmentDue is what clears the next installment: its scheduled amount,
// or the outstanding balance when less is left.
func InstallmentDue(credit *models.Credit, payments []models.Payment) decimal.Decimal {
	return decimal.Min(credit.NextInstallmentAmount(), OutstandingBalance(credit, payments))
}

// CheckPayable rejects payments on credits that cannot take money
func CheckPayable(credit *models.Credit) error {
	switch {
	case credit.Status == models.CreditStatusPending:
		return ineligible("el contrato del crédito no ha sido aceptado")
	case credit.IsClosed():
		return ineligible(fmt.Sprintf("el crédito está cerrado (%s)", credit.Status))
	case !credit.IsOpen():
		return ineligible(fmt.Sprintf("el crédito no admite pagos en estado %s", credit.Status))
	}
	return nil
}

// ApplyPayment validates payment against the credit and its history and returns
// a copy of the credit with installment count, status and end date updated.
// The payment itself is not appended; persisting it is the caller's job.
func ApplyPayment(ctx context.Context, credit *models.Credit, payments []models.Payment, payment models.Payment, li LateInterest, asOf time.Time) (*models.Credit, error) {
	if !payment.Amount.IsPositive() {
		return nil, validation("el monto del pago debe ser mayor a cero")
	}
	if !models.IsValidPaymentType(payment.Type) {
		return nil, validation(fmt.Sprintf("tipo de pago inválido: %s", payment.Type))
	}
	if err := CheckPayable(credit); err != nil {
		return nil, err
	}

	updated := *credit
	sm := statemachine.NewCreditFSM(&updated)

	switch payment.Type {
	case models.PaymentTypeTotal:
		debt := TotalDebt(credit, payments, li, asOf)
		if payment.Amount.LessThan(debt) {
			return nil, validation(fmt.Sprintf(
				"el pago total debe cubrir la deuda de %s", debt.StringFixed(2)))
		}
	case models.PaymentTypeAgreement:
		if credit.AgreementAmount == nil {
			return nil, validation("el crédito no tiene un acuerdo de pago registrado")
		}
	case models.PaymentTypeInstallment:
		due := InstallmentDue(credit, payments)
		if due.IsPositive() && payment.Amount.GreaterThanOrEqual(due) {
			updated.PaidInstallments++
		}
	}

	after := append(append([]models.Payment{}, payments...), payment)
	if OutstandingBalance(&updated, after).IsZero() {
		updated.PaidInstallments = updated.InstallmentCount
		if err := sm.Settle(ctx); err != nil {
			return nil, transitionErr(err)
		}
		end := asOf
		updated.EndDate = &end
		return &updated, nil
	}

	if updated.PaidInstallments > 0 {
		if err := sm.MarkPartiallyPaid(ctx); err != nil {
			return nil, transitionErr(err)
		}
	}
	return &updated, nil
}

func transitionErr(err error) error {
	var te *statemachine.TransitionError
	if errors.As(err, &te) {
		return ineligible(fmt.Sprintf("operación no permitida para un crédito en estado %s", te.From))
	}
	return err
}

// Summary is the derived financial state of a credit
type Summary struct {
	Principal             decimal.Decimal  `json:"principal"`
	CommissionAmount      decimal.Decimal  `json:"commission_amount"`
	Outstanding           decimal.Decimal  `json:"outstanding"`
	PaidAmount            decimal.Decimal  `json:"paid_amount"`
	CommissionPaid        decimal.Decimal  `json:"commission_paid"`
	InterestPaid          decimal.Decimal  `json:"interest_paid"`
	InstallmentAmount     decimal.Decimal  `json:"installment_amount"`
	RemainingInstallments int              `json:"remaining_installments"`
	AgreementAmount       *decimal.Decimal `json:"agreement_amount"`
	LateCharge            LateCharge       `json:"late_charge"`
	TotalDebt             decimal.Decimal  `json:"total_debt"`
	CanRenew              bool             `json:"can_renew"`
}

// Summarize derives the financial summary of a credit as of asOf
func Summarize(credit *models.Credit, payments []models.Payment, li LateInterest, asOf time.Time) Summary {
	t := Tally(payments)
	return Summary{
		Principal:             credit.Principal,
		CommissionAmount:      credit.CommissionAmount,
		Outstanding:           OutstandingBalance(credit, payments),
		PaidAmount:            t.PaidAmount(),
		CommissionPaid:        t.Commission,
		InterestPaid:          t.Interest,
		InstallmentAmount:     credit.InstallmentAmount(),
		RemainingInstallments: max(credit.InstallmentCount-credit.PaidInstallments, 0),
		AgreementAmount:       credit.AgreementAmount,
		LateCharge:            ComputeLateCharge(credit, li, asOf),
		TotalDebt:             TotalDebt(credit, payments, li, asOf),
		CanRenew:              CanRenew(credit, payments),
	}
}
