package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/recaudoseguro/recaudo-api/internal/models"
)

// Credit events
const (
	EventAccept    = "accept"
	EventPay       = "pay"
	EventSettle    = "settle"
	EventRenew     = "renew"
	EventRefinance = "refinance"
	EventDefault   = "default"
)

var openStates = []string{models.CreditStatusActive, models.CreditStatusPartiallyPaid}

// TransitionError is returned when an event is not allowed from the credit's current state
type TransitionError struct {
	Event string
	From  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("credit cannot %s from state %s", e.Event, e.From)
}

// IsTransitionError reports whether err is a rejected transition
func IsTransitionError(err error) bool {
	var target *TransitionError
	return errors.As(err, &target)
}

// CreditFSM wraps a credit with its state machine
type CreditFSM struct {
	credit *models.Credit
	fsm    *fsm.FSM
}

// NewCreditFSM creates a new credit state machine
func NewCreditFSM(credit *models.Credit) *CreditFSM {
	cf := &CreditFSM{
		credit: credit,
	}

	cf.fsm = fsm.NewFSM(
		credit.Status,
		fsm.Events{
			// contract accepted by the client
			{Name: EventAccept, Src: []string{models.CreditStatusPending}, Dst: models.CreditStatusActive},

			// first installment paid
			{Name: EventPay, Src: []string{models.CreditStatusActive}, Dst: models.CreditStatusPartiallyPaid},

			// balance reached zero
			{Name: EventSettle, Src: openStates, Dst: models.CreditStatusPaid},

			{Name: EventRenew, Src: openStates, Dst: models.CreditStatusRenewed},
			{Name: EventRefinance, Src: openStates, Dst: models.CreditStatusRefinanced},
			{Name: EventDefault, Src: openStates, Dst: models.CreditStatusDefaulted},
		},
		fsm.Callbacks{},
	)

	return cf
}

func (c *CreditFSM) fire(ctx context.Context, event string) error {
	if !c.fsm.Can(event) {
		return &TransitionError{Event: event, From: c.credit.Status}
	}
	if err := c.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("failed to %s credit: %w", event, err)
	}
	c.credit.Status = c.fsm.Current()
	return nil
}

// Accept moves a pending credit to active once the contract is accepted
func (c *CreditFSM) Accept(ctx context.Context) error {
	return c.fire(ctx, EventAccept)
}

// MarkPartiallyPaid records that at least one installment was paid. It is a
// no-op for credits already partially paid.
func (c *CreditFSM) MarkPartiallyPaid(ctx context.Context) error {
	if c.credit.Status == models.CreditStatusPartiallyPaid {
		return nil
	}
	return c.fire(ctx, EventPay)
}

// Settle closes the credit as paid
func (c *CreditFSM) Settle(ctx context.Context) error {
	return c.fire(ctx, EventSettle)
}

// Renew closes the credit in favour of a renewed successor
func (c *CreditFSM) Renew(ctx context.Context) error {
	return c.fire(ctx, EventRenew)
}

// Refinance closes the credit in favour of a refinanced successor
func (c *CreditFSM) Refinance(ctx context.Context) error {
	return c.fire(ctx, EventRefinance)
}

// Default writes the credit off
func (c *CreditFSM) Default(ctx context.Context) error {
	return c.fire(ctx, EventDefault)
}

// Can checks if a transition is possible
func (c *CreditFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
