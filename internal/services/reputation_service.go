package services

import (
	"context"
	"fmt"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/lending"
	"github.com/recaudoseguro/recaudo-api/internal/models"
)

const (
	minReputation  = 300
	maxReputation  = 850
	baseReputation = 500
)

// CreditHistory is one credit of a client with its payments
type CreditHistory struct {
	Credit   models.Credit
	Payments []models.Payment
}

// AdviceInput is what an Advisor gets to judge a client
type AdviceInput struct {
	ClientID uint
	Credits  []CreditHistory
	AsOf     time.Time
}

// Advice is a lending recommendation for a client
type Advice struct {
	ClientID        uint      `json:"client_id"`
	Score           int       `json:"score"`
	Rating          string    `json:"rating"`
	Summary         string    `json:"summary"`
	Recommendations []string  `json:"recommendations"`
	ScoredAt        time.Time `json:"scored_at"`
}

// Advisor scores clients and recommends lending actions. Implementations may
// call external services; the default is RuleBasedAdvisor.
type Advisor interface {
	Advise(ctx context.Context, input AdviceInput) (*Advice, error)
}

// RuleBasedAdvisor scores a client from its repayment history
type RuleBasedAdvisor struct{}

func NewRuleBasedAdvisor() *RuleBasedAdvisor {
	return &RuleBasedAdvisor{}
}

// Advise implements Advisor
func (RuleBasedAdvisor) Advise(_ context.Context, input AdviceInput) (*Advice, error) {
	score := baseReputation
	var onTime, late, missed, defaulted, settled int

	for _, h := range input.Credits {
		credit := h.Credit
		onTimeCount, lateCount, delta := scoreInstallments(&credit, h.Payments)
		onTime += onTimeCount
		late += lateCount
		score += delta

		// missed visits weigh even when the credit was later paid
		missed += credit.MissedPaymentDays
		score -= 2 * credit.MissedPaymentDays

		switch credit.Status {
		case models.CreditStatusPaid:
			settled++
			score += 50
		case models.CreditStatusRenewed:
			settled++
			score += 30
		case models.CreditStatusRefinanced:
			score -= 20
		case models.CreditStatusDefaulted:
			defaulted++
			score -= 100
		}
	}

	score = max(minReputation, min(maxReputation, score))
	advice := &Advice{
		ClientID: input.ClientID,
		Score:    score,
		Rating:   ratingOf(score),
		Summary: fmt.Sprintf("%d créditos, %d cuotas a tiempo, %d tardías, %d días de impago, %d castigados",
			len(input.Credits), onTime, late, missed, defaulted),
		ScoredAt: input.AsOf,
	}
	advice.Recommendations = recommend(score, settled, defaulted, late)
	return advice, nil
}

// scoreInstallments compares installment payments to the due dates they paid
func scoreInstallments(credit *models.Credit, payments []models.Payment) (onTime, late, delta int) {
	paid := 0
	for _, p := range payments {
		if p.Type != models.PaymentTypeInstallment {
			continue
		}
		if paid >= len(credit.PaymentSchedule) {
			break
		}
		daysLate := lending.DaysBetween(credit.PaymentSchedule[paid], p.Date)
		switch {
		case daysLate <= 0:
			onTime++
			delta += 5
		case daysLate <= 7:
			late++
			delta -= 2
		case daysLate <= 30:
			late++
			delta -= 5
		default:
			late++
			delta -= 10
		}
		if p.Amount.GreaterThanOrEqual(credit.InstallmentAmount()) {
			paid++
		}
	}
	return onTime, late, delta
}

func ratingOf(score int) string {
	switch {
	case score >= 750:
		return "excelente"
	case score >= 650:
		return "bueno"
	case score >= 550:
		return "regular"
	}
	return "riesgoso"
}

func recommend(score, settled, defaulted, late int) []string {
	var recs []string
	if defaulted > 0 {
		recs = append(recs, "El cliente tiene créditos castigados; no se recomienda otorgar un nuevo crédito")
	}
	if late > 0 {
		recs = append(recs, "Programar visitas más frecuentes: el cliente registra cuotas tardías")
	}
	if settled > 0 && score >= 650 {
		recs = append(recs, "Cliente apto para renovación con monto adicional")
	}
	if len(recs) == 0 {
		recs = append(recs, "Sin historial suficiente; iniciar con un monto bajo")
	}
	return recs
}
