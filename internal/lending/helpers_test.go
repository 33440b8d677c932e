package lending

import (
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func weekly(start time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, 7*i)
	}
	return dates
}

// sampleCredit is 1,000,000 lent with 200,000 commission in ten weekly
// installments of 120,000, first due on 2026-01-10.
func sampleCredit() *models.Credit {
	return &models.Credit{
		ID:               1,
		ClientID:         10,
		CollectorID:      20,
		ProviderID:       30,
		Principal:        dec("1000000"),
		CommissionAmount: dec("200000"),
		InstallmentCount: 10,
		PaymentSchedule:  weekly(day(2026, 1, 10), 10),
		Status:           models.CreditStatusActive,
		CreatedAt:        day(2026, 1, 3),
		Version:          1,
	}
}

func pay(kind, amount string) models.Payment {
	return models.Payment{CreditID: 1, Type: kind, Amount: dec(amount), Date: day(2026, 1, 10)}
}

var lateOn = LateInterest{Rate: dec("2"), Active: true}
var lateOff = LateInterest{Rate: dec("2"), Active: false}
