package lending

import (
	"sort"
	"strings"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/shopspring/decimal"
)

// RouteInput is everything the route needs to know about one credit
type RouteInput struct {
	Credit       models.Credit
	ClientName   string
	ClientPhone  string
	Address      string
	Payments     []models.Payment
	LateInterest LateInterest
}

// RouteWindow bounds the due dates shown on a route. Overdue credits are
// always shown; a zero From means asOf.
type RouteWindow struct {
	From  time.Time
	Until time.Time
}

// RouteEntry is one client visit
type RouteEntry struct {
	CreditID          uint            `json:"credit_id"`
	ClientID          uint            `json:"client_id"`
	ClientName        string          `json:"client_name"`
	ClientPhone       string          `json:"client_phone,omitempty"`
	Address           string          `json:"address,omitempty"`
	NextPaymentDate   time.Time       `json:"next_payment_date"`
	InstallmentNumber int             `json:"installment_number"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	LateFee           decimal.Decimal `json:"late_fee"`
	ChargeableDays    int             `json:"chargeable_days"`
	TotalDebt         decimal.Decimal `json:"total_debt"`
	Commission        decimal.Decimal `json:"commission"`
	HasAgreement      bool            `json:"has_agreement"`
}

// RouteGroup is every visit due on one calendar date
type RouteGroup struct {
	Date          time.Time       `json:"date"`
	Overdue       bool            `json:"overdue"`
	Entries       []RouteEntry    `json:"entries"`
	ExpectedTotal decimal.Decimal `json:"expected_total"`
}

// Route is a collector's visits grouped by due date
type Route struct {
	AsOf          time.Time       `json:"as_of"`
	Until         time.Time       `json:"until"`
	Groups        []RouteGroup    `json:"groups"`
	TotalEntries  int             `json:"total_entries"`
	ExpectedTotal decimal.Decimal `json:"expected_total"`
}

// BuildRoute groups the routable credits by next due date. Groups are sorted by
// date and entries by client name then credit ID, so the output only depends on
// the inputs and asOf.
func BuildRoute(inputs []RouteInput, window RouteWindow, asOf time.Time) Route {
	today := DateOf(asOf)
	from := today
	if !window.From.IsZero() {
		from = DateOf(window.From)
	}
	until := today
	if !window.Until.IsZero() {
		until = DateOf(window.Until)
	}

	route := Route{
		AsOf:          today,
		Until:         until,
		Groups:        []RouteGroup{},
		ExpectedTotal: decimal.Zero,
	}

	byDate := map[time.Time]*RouteGroup{}
	for i := range inputs {
		in := &inputs[i]
		credit := &in.Credit
		if !credit.IsOpen() || !credit.HasCompleteSchedule() {
			continue
		}
		next, ok := credit.NextDueDate()
		if !ok {
			continue
		}
		day := DateOf(next)
		overdue := day.Before(today)
		if !overdue && (day.Before(from) || day.After(until)) {
			continue
		}

		charge := ComputeLateCharge(credit, in.LateInterest, asOf)
		entry := RouteEntry{
			CreditID:          credit.ID,
			ClientID:          credit.ClientID,
			ClientName:        in.ClientName,
			ClientPhone:       in.ClientPhone,
			Address:           in.Address,
			NextPaymentDate:   day,
			InstallmentNumber: credit.PaidInstallments + 1,
			InstallmentAmount: InstallmentDue(credit, in.Payments),
			LateFee:           charge.LateFee,
			ChargeableDays:    charge.ChargeableDays,
			TotalDebt:         TotalDebt(credit, in.Payments, in.LateInterest, asOf),
			Commission:        credit.CommissionAmount,
			HasAgreement:      credit.AgreementAmount != nil,
		}

		g, ok := byDate[day]
		if !ok {
			g = &RouteGroup{Date: day, Overdue: overdue, ExpectedTotal: decimal.Zero}
			byDate[day] = g
		}
		g.Entries = append(g.Entries, entry)
		g.ExpectedTotal = g.ExpectedTotal.Add(entry.InstallmentAmount).Add(entry.LateFee)
	}

	for _, g := range byDate {
		sort.SliceStable(g.Entries, func(i, j int) bool {
			a, b := g.Entries[i], g.Entries[j]
			if c := strings.Compare(strings.ToLower(a.ClientName), strings.ToLower(b.ClientName)); c != 0 {
				return c < 0
			}
			return a.CreditID < b.CreditID
		})
		route.Groups = append(route.Groups, *g)
		route.TotalEntries += len(g.Entries)
		route.ExpectedTotal = route.ExpectedTotal.Add(g.ExpectedTotal)
	}
	sort.Slice(route.Groups, func(i, j int) bool {
		return route.Groups[i].Date.Before(route.Groups[j].Date)
	})
	return route
}
