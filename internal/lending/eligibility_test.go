package lending

import (
	"testing"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanRenew_ThresholdIsInclusive(t *testing.T) {
	credit := sampleCredit() // obligation 1,200,000, half 600,000

	below := []models.Payment{pay(models.PaymentTypeInstallment, "599999")}
	assert.False(t, CanRenew(credit, below))

	exact := []models.Payment{pay(models.PaymentTypeInstallment, "600000")}
	assert.True(t, CanRenew(credit, exact))

	// commission and interest payments do not count towards the threshold
	other := []models.Payment{
		pay(models.PaymentTypeCommission, "400000"),
		pay(models.PaymentTypeInterest, "400000"),
	}
	assert.False(t, CanRenew(credit, other))
}

func TestCanRenew_RequiresOpenCredit(t *testing.T) {
	credit := sampleCredit()
	credit.Status = models.CreditStatusRenewed
	assert.False(t, CanRenew(credit, []models.Payment{pay(models.PaymentTypeInstallment, "900000")}))
}

func TestRenewalPrincipal(t *testing.T) {
	credit := sampleCredit()
	credit.Principal = dec("500000")
	credit.CommissionAmount = dec("100000")
	credit.InstallmentCount = 6
	credit.PaymentSchedule = weekly(day(2026, 1, 10), 6)
	payments := []models.Payment{pay(models.PaymentTypeInstallment, "300000")}
	require.True(t, dec("300000").Equal(OutstandingBalance(credit, payments)))

	principal, err := RenewalPrincipal(credit, payments, dec("200000"))
	require.NoError(t, err)
	assert.True(t, dec("500000").Equal(principal))

	flat := []models.CommissionTier{{MinAmount: dec("0"), MaxAmount: dec("0"), Percentage: dec("20")}}
	commission, err := ResolveCommission(principal, flat)
	require.NoError(t, err)
	assert.True(t, dec("100000").Equal(commission))
}

func TestRenewalPrincipal_Errors(t *testing.T) {
	credit := sampleCredit()

	_, err := RenewalPrincipal(credit, nil, dec("100000"))
	assert.True(t, IsIneligible(err))

	paid := []models.Payment{pay(models.PaymentTypeInstallment, "600000")}
	_, err = RenewalPrincipal(credit, paid, dec("-1"))
	assert.True(t, IsValidation(err))

	closed := sampleCredit()
	closed.Status = models.CreditStatusPaid
	_, err = RenewalPrincipal(closed, paid, dec("0"))
	assert.True(t, IsIneligible(err))
}

func TestRefinancePrincipal_IncludesLateFee(t *testing.T) {
	credit := sampleCredit()

	principal, err := RefinancePrincipal(credit, nil, lateOn, day(2026, 1, 13))
	require.NoError(t, err)
	assert.True(t, dec("1207200").Equal(principal))

	credit.Status = models.CreditStatusDefaulted
	_, err = RefinancePrincipal(credit, nil, lateOn, day(2026, 1, 13))
	assert.True(t, IsIneligible(err))
}

func TestValidateSchedule(t *testing.T) {
	credit := sampleCredit()
	credit.InstallmentCount = 3
	credit.PaymentSchedule = nil
	today := day(2026, 1, 5)

	tests := []struct {
		name    string
		dates   []time.Time
		wantErr bool
	}{
		{"valid", []time.Time{day(2026, 1, 5), day(2026, 1, 12), day(2026, 1, 19)}, false},
		{"too short", []time.Time{day(2026, 1, 12), day(2026, 1, 19)}, true},
		{"too long", weekly(day(2026, 1, 12), 4), true},
		{"before creation", []time.Time{day(2026, 1, 2), day(2026, 1, 12), day(2026, 1, 19)}, true},
		{"in the past", []time.Time{day(2026, 1, 4), day(2026, 1, 12), day(2026, 1, 19)}, true},
		{"repeated date", []time.Time{day(2026, 1, 12), day(2026, 1, 12), day(2026, 1, 19)}, true},
		{"decreasing", []time.Time{day(2026, 1, 19), day(2026, 1, 12), day(2026, 1, 26)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(credit, tt.dates, today)
			if tt.wantErr {
				assert.True(t, IsValidation(err), "expected validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSchedule_CreationDateInTodaysLocation(t *testing.T) {
	bogota := time.FixedZone("COT", -5*60*60)
	credit := sampleCredit()
	credit.InstallmentCount = 3
	credit.PaymentSchedule = nil
	// 2026-01-09 22:00 in Bogotá, already the 10th in UTC
	credit.CreatedAt = time.Date(2026, 1, 10, 3, 0, 0, 0, time.UTC)
	today := time.Date(2026, 1, 9, 23, 0, 0, 0, bogota)

	assert.NoError(t, ValidateSchedule(credit, weekly(day(2026, 1, 9), 3), today))
	assert.True(t, IsValidation(ValidateSchedule(credit, weekly(day(2026, 1, 8), 3), today)))
}

func TestCheckSchedulable(t *testing.T) {
	credit := sampleCredit()
	credit.Status = models.CreditStatusPending
	assert.NoError(t, CheckSchedulable(credit))

	credit.Status = models.CreditStatusActive
	assert.NoError(t, CheckSchedulable(credit))

	credit.PaidInstallments = 1
	assert.True(t, IsIneligible(CheckSchedulable(credit)))

	credit.Status = models.CreditStatusPaid
	assert.True(t, IsIneligible(CheckSchedulable(credit)))
}

func TestCheckMissedPayment(t *testing.T) {
	credit := sampleCredit()
	assert.NoError(t, CheckMissedPayment(credit, lateOn))
	assert.True(t, IsIneligible(CheckMissedPayment(credit, lateOff)))

	credit.Status = models.CreditStatusPaid
	assert.True(t, IsIneligible(CheckMissedPayment(credit, lateOn)))
}

func TestCheckAgreement(t *testing.T) {
	credit := sampleCredit()
	asOf := day(2026, 1, 13)

	assert.NoError(t, CheckAgreement(credit, nil, lateOn, dec("1207200"), asOf))
	assert.True(t, IsValidation(CheckAgreement(credit, nil, lateOn, dec("1207200.01"), asOf)))
	assert.True(t, IsValidation(CheckAgreement(credit, nil, lateOn, dec("0"), asOf)))

	// renegotiating is bounded by the full debt, not the previous agreement
	previous := dec("500000")
	credit.AgreementAmount = &previous
	assert.NoError(t, CheckAgreement(credit, nil, lateOn, dec("700000"), asOf))

	credit.Status = models.CreditStatusRefinanced
	assert.True(t, IsIneligible(CheckAgreement(credit, nil, lateOn, dec("1000"), asOf)))
}

func TestDefaultDue(t *testing.T) {
	credit := sampleCredit()

	assert.False(t, DefaultDue(credit, 0, day(2026, 6, 1)))
	assert.False(t, DefaultDue(credit, 30, day(2026, 2, 8)))
	assert.True(t, DefaultDue(credit, 30, day(2026, 2, 9)))

	credit.MissedPaymentDays = 30
	assert.True(t, DefaultDue(credit, 30, day(2026, 1, 1)))

	credit.Status = models.CreditStatusPaid
	assert.False(t, DefaultDue(credit, 30, day(2026, 6, 1)))
}
