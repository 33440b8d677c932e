package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/lending"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeFixture struct {
	store *memStore
	svc   *RouteService

	overdue, today, today2, later models.Credit
}

// newRouteFixture builds a route as of 2026-01-20 with one overdue visit, two
// visits due today and one due on 2026-01-25.
func newRouteFixture() *routeFixture {
	s := seededStore()
	s.clients[11] = models.Client{ID: 11, CollectorID: collectorID, ProviderID: providerID, FullName: "Beto Ruiz", Phone: "3109876543"}

	f := &routeFixture{store: s}
	f.overdue = seedCredit(s)
	f.today = seedCredit(s, func(c *models.Credit) {
		c.ClientID = 11
		c.PaymentSchedule = weekly(day("2026-01-20"), 10)
	})
	f.today2 = seedCredit(s, func(c *models.Credit) { c.PaymentSchedule = weekly(day("2026-01-20"), 10) })
	f.later = seedCredit(s, func(c *models.Credit) { c.PaymentSchedule = weekly(day("2026-01-25"), 10) })
	seedCredit(s, func(c *models.Credit) { c.Status = models.CreditStatusPending })
	seedCredit(s, func(c *models.Credit) { c.CollectorID = otherID })

	f.svc = NewRouteService(s.repos(), 4, time.UTC)
	f.svc.now = fixedClock(day("2026-01-20").Add(7 * time.Hour))
	return f
}

func TestRouteService_BuildPaymentRoute(t *testing.T) {
	f := newRouteFixture()

	route, err := f.svc.BuildPaymentRoute(context.Background(), collectorActor, collectorID, lending.RouteWindow{})
	require.NoError(t, err)

	require.Len(t, route.Groups, 2)
	assert.Equal(t, 3, route.TotalEntries)

	overdue := route.Groups[0]
	assert.True(t, overdue.Date.Equal(day("2026-01-10")))
	assert.True(t, overdue.Overdue)
	require.Len(t, overdue.Entries, 1)
	entry := overdue.Entries[0]
	assert.Equal(t, f.overdue.ID, entry.CreditID)
	assert.Equal(t, 10, entry.ChargeableDays)
	assert.Equal(t, "24000.00", entry.LateFee.StringFixed(2))
	assert.Equal(t, "1224000.00", entry.TotalDebt.StringFixed(2))
	assert.Equal(t, 1, entry.InstallmentNumber)
	assert.Equal(t, "Calle 1 # 2-3", entry.Address)

	dueToday := route.Groups[1]
	assert.False(t, dueToday.Overdue)
	require.Len(t, dueToday.Entries, 2)
	assert.Equal(t, "Ana Gómez", dueToday.Entries[0].ClientName)
	assert.Equal(t, f.today2.ID, dueToday.Entries[0].CreditID)
	assert.Equal(t, "Beto Ruiz", dueToday.Entries[1].ClientName)
	assert.Equal(t, "240000.00", dueToday.ExpectedTotal.StringFixed(2))

	assert.Equal(t, "384000.00", route.ExpectedTotal.StringFixed(2))
}

func TestRouteService_BuildPaymentRoute_Window(t *testing.T) {
	f := newRouteFixture()

	route, err := f.svc.BuildPaymentRoute(context.Background(), providerActor, collectorID, lending.RouteWindow{
		From:  day("2026-01-21"),
		Until: day("2026-01-31"),
	})
	require.NoError(t, err)

	require.Len(t, route.Groups, 2, "overdue visits stay on the route whatever the window")
	assert.True(t, route.Groups[0].Overdue)
	assert.Equal(t, f.later.ID, route.Groups[1].Entries[0].CreditID)
	assert.True(t, route.Until.Equal(day("2026-01-31")))
}

func TestRouteService_BuildPaymentRoute_Errors(t *testing.T) {
	tests := []struct {
		name        string
		actor       Actor
		collectorID uint
		window      lending.RouteWindow
		kind        ErrorKind
	}{
		{name: "another collector's route", actor: otherActor, collectorID: collectorID, kind: KindForbidden},
		{name: "not a collector", actor: adminActor, collectorID: providerID, kind: KindValidation},
		{name: "unknown collector", actor: adminActor, collectorID: 999, kind: KindNotFound},
		{
			name:        "inverted window",
			actor:       collectorActor,
			collectorID: collectorID,
			window:      lending.RouteWindow{From: day("2026-01-25"), Until: day("2026-01-21")},
			kind:        KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouteFixture()
			_, err := f.svc.BuildPaymentRoute(context.Background(), tt.actor, tt.collectorID, tt.window)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestRouteService_BuildPaymentRoute_PaymentLoadFails(t *testing.T) {
	f := newRouteFixture()
	boom := errors.New("connection reset")
	repos := f.store.repos()
	repos.Payment.(*fakePaymentRepo).mockFindByCredit = func(ctx context.Context, creditID uint) ([]models.Payment, error) {
		return nil, boom
	}
	svc := NewRouteService(repos, 2, time.UTC)

	_, err := svc.BuildPaymentRoute(context.Background(), collectorActor, collectorID, lending.RouteWindow{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, KindInternal, KindOf(err))
}
