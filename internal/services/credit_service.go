package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/recaudoseguro/recaudo-api/internal/jobs"
	"github.com/recaudoseguro/recaudo-api/internal/lending"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/internal/statemachine"
	"github.com/recaudoseguro/recaudo-api/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContractGenerator renders and stores the contract document of a credit
type ContractGenerator interface {
	GenerateContract(ctx context.Context, creditID uint) error
}

// CreditService runs the credit lifecycle: creation, payments, missed
// visits, agreements, renewals, refinancing, schedules and defaults.
//
// Every mutation re-reads the credit inside a transaction and writes it back
// with a version check; a conflicting write is retried once.
type CreditService struct {
	repos     *repository.Repositories
	audit     *AuditService
	notifier  *NotificationService
	worker    *jobs.Worker
	contracts ContractGenerator
	now       func() time.Time
}

func NewCreditService(
	repos *repository.Repositories,
	audit *AuditService,
	notifier *NotificationService,
	worker *jobs.Worker,
	contracts ContractGenerator,
	loc *time.Location,
) *CreditService {
	if loc == nil {
		loc = time.UTC
	}
	return &CreditService{
		repos:     repos,
		audit:     audit,
		notifier:  notifier,
		worker:    worker,
		contracts: contracts,
		now:       func() time.Time { return time.Now().In(loc) },
	}
}

// CreateCreditInput opens a new credit for a client
type CreateCreditInput struct {
	ClientID         uint            `json:"client_id" binding:"required"`
	Principal        decimal.Decimal `json:"principal"`
	InstallmentCount int             `json:"installment_count" binding:"required"`
	PaymentSchedule  []time.Time     `json:"payment_schedule"`
}

// RegisterPaymentInput is money collected on a credit
type RegisterPaymentInput struct {
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type" binding:"required"`
	Note   *string         `json:"note"`
}

// PaymentResult is the outcome of a registered payment
type PaymentResult struct {
	Payment models.PaymentResponse `json:"payment"`
	Credit  models.CreditResponse  `json:"credit"`
	Summary lending.Summary        `json:"summary"`
}

// CreditSummary is a credit with its derived financial state
type CreditSummary struct {
	Credit  models.CreditResponse `json:"credit"`
	Summary lending.Summary       `json:"summary"`
}

// RenewalEligibility explains whether a credit can be renewed
type RenewalEligibility struct {
	CreditID    uint            `json:"credit_id"`
	Eligible    bool            `json:"eligible"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Threshold   decimal.Decimal `json:"threshold"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// RenewCreditInput asks for a successor credit with fresh funds
type RenewCreditInput struct {
	AdditionalAmount decimal.Decimal `json:"additional_amount"`
	InstallmentCount int             `json:"installment_count" binding:"required"`
}

// SuccessionResult is the closed credit and the credit that replaced it
type SuccessionResult struct {
	Previous models.CreditResponse `json:"previous"`
	Credit   models.CreditResponse `json:"credit"`
}

// Get returns a credit with its client
func (s *CreditService) Get(ctx context.Context, actor Actor, id uint) (*models.Credit, error) {
	credit, err := s.repos.Credit.FindByIDWithClient(ctx, id)
	if err != nil {
		return nil, creditLookupErr(err)
	}
	if !actor.CanAccessCredit(credit) {
		return nil, ErrForbidden
	}
	return credit, nil
}

// List returns the credits visible to the actor
func (s *CreditService) List(ctx context.Context, actor Actor, query *repository.CreditQuery) ([]models.Credit, int64, error) {
	switch actor.Role {
	case models.RoleCollector:
		query.CollectorID = actor.UserID
	case models.RoleProvider:
		query.ProviderID = actor.UserID
	}
	return s.repos.Credit.List(ctx, query)
}

// Create opens a pending credit. The commission is resolved once, here, from
// the provider's tiers.
func (s *CreditService) Create(ctx context.Context, actor Actor, input CreateCreditInput) (*models.Credit, error) {
	if err := lending.ValidateInstallmentCount(input.InstallmentCount); err != nil {
		return nil, wrapErr(err)
	}

	client, err := s.repos.Client.FindByID(ctx, input.ClientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("cliente")
	}
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessClient(client) {
		return nil, ErrForbidden
	}

	settings, err := s.settingsOf(ctx, s.repos.Settings, client.ProviderID)
	if err != nil {
		return nil, err
	}
	var tiers []models.CommissionTier
	if settings != nil {
		tiers = settings.CommissionTiers
	}
	commission, err := lending.ResolveCommission(input.Principal, tiers)
	if err != nil {
		return nil, wrapErr(err)
	}

	now := s.now()
	credit := &models.Credit{
		GUID:             uuid.NewString(),
		ClientID:         client.ID,
		CollectorID:      client.CollectorID,
		ProviderID:       client.ProviderID,
		Principal:        input.Principal.Round(2),
		CommissionAmount: commission,
		InstallmentCount: input.InstallmentCount,
		Status:           models.CreditStatusPending,
		CreatedAt:        now,
	}
	if len(input.PaymentSchedule) > 0 {
		if err := lending.ValidateSchedule(credit, input.PaymentSchedule, now); err != nil {
			return nil, wrapErr(err)
		}
		credit.PaymentSchedule = lending.NormalizeSchedule(input.PaymentSchedule)
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Credit.Create(ctx, credit); err != nil {
			return fmt.Errorf("failed to create credit: %w", err)
		}
		details := fmt.Sprintf("principal %s, comisión %s, %d cuotas",
			credit.Principal.StringFixed(2), credit.CommissionAmount.StringFixed(2), credit.InstallmentCount)
		return s.audit.Record(ctx, tx.Audit, actor, models.AuditActionCreate, "credit", credit.ID, details)
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	credit.Client = *client
	logger.FromContext(ctx).Info("credit created",
		slog.Uint64("credit_id", uint64(credit.ID)), slog.String("guid", credit.GUID))
	return credit, nil
}

// Summary returns the credit and its financial state as of asOf. A zero asOf means now.
func (s *CreditService) Summary(ctx context.Context, actor Actor, id uint, asOf time.Time) (*CreditSummary, error) {
	credit, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	payments, li, err := s.ledgerOf(ctx, s.repos, credit)
	if err != nil {
		return nil, err
	}
	return &CreditSummary{
		Credit:  credit.ToResponse(),
		Summary: lending.Summarize(credit, payments, li, s.asOf(asOf)),
	}, nil
}

// LateCharge returns the lateness and late fee of a credit as of asOf
func (s *CreditService) LateCharge(ctx context.Context, actor Actor, id uint, asOf time.Time) (*lending.LateCharge, error) {
	credit, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	_, li, err := s.ledgerOf(ctx, s.repos, credit)
	if err != nil {
		return nil, err
	}
	charge := lending.ComputeLateCharge(credit, li, s.asOf(asOf))
	return &charge, nil
}

// TotalDebt returns the payoff figure of a credit as of asOf
func (s *CreditService) TotalDebt(ctx context.Context, actor Actor, id uint, asOf time.Time) (decimal.Decimal, error) {
	credit, err := s.Get(ctx, actor, id)
	if err != nil {
		return decimal.Zero, err
	}
	payments, li, err := s.ledgerOf(ctx, s.repos, credit)
	if err != nil {
		return decimal.Zero, err
	}
	return lending.TotalDebt(credit, payments, li, s.asOf(asOf)), nil
}

// Payments lists the payments of a credit in the order they were made
func (s *CreditService) Payments(ctx context.Context, actor Actor, id uint) ([]models.Payment, error) {
	credit, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.repos.Payment.FindByCredit(ctx, credit.ID)
}

// CanRenew reports whether half of principal plus commission has been repaid
func (s *CreditService) CanRenew(ctx context.Context, actor Actor, id uint) (*RenewalEligibility, error) {
	credit, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.repos.Payment.FindByCredit(ctx, credit.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	return &RenewalEligibility{
		CreditID:    credit.ID,
		Eligible:    lending.CanRenew(credit, payments),
		PaidAmount:  lending.Tally(payments).PaidAmount(),
		Threshold:   lending.RenewalThreshold(credit),
		Outstanding: lending.OutstandingBalance(credit, payments),
	}, nil
}

// RegisterPayment appends a payment and advances the credit
func (s *CreditService) RegisterPayment(ctx context.Context, actor Actor, id uint, input RegisterPaymentInput) (*PaymentResult, error) {
	var result *PaymentResult
	var closed *models.Credit

	err := s.mutate(ctx, actor, id, func(tx *repository.Repositories, credit *models.Credit) error {
		payments, li, err := s.ledgerOf(ctx, tx, credit)
		if err != nil {
			return err
		}
		asOf := s.now()
		payment := models.Payment{
			CreditID:    credit.ID,
			CollectorID: credit.CollectorID,
			Date:        lending.DateOf(asOf),
			Amount:      input.Amount,
			Type:        input.Type,
			Note:        input.Note,
		}
		if actor.Role == models.RoleCollector {
			payment.CollectorID = actor.UserID
		}

		updated, err := lending.ApplyPayment(ctx, credit, payments, payment, li, asOf)
		if err != nil {
			return err
		}
		if err := tx.Payment.Create(ctx, &payment); err != nil {
			return fmt.Errorf("failed to store payment: %w", err)
		}
		if err := tx.Credit.Update(ctx, updated); err != nil {
			return err
		}

		details := fmt.Sprintf("%s por %s", models.PaymentTypeDescription(payment.Type), payment.Amount.StringFixed(2))
		if err := s.audit.Record(ctx, tx.Audit, actor, models.AuditActionPayment, "credit", credit.ID, details); err != nil {
			return err
		}

		result = &PaymentResult{
			Payment: payment.ToResponse(),
			Credit:  updated.ToResponse(),
			Summary: lending.Summarize(updated, append(payments, payment), li, asOf),
		}
		closed = nil
		if updated.Status == models.CreditStatusPaid {
			closed = updated
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if closed != nil {
		s.notifier.notifyCredit(ctx, closed, "Crédito pagado",
			fmt.Sprintf("El crédito %s fue pagado en su totalidad", closed.GUID), models.NotificationTypeCreditPaid)
	}
	return result, nil
}

// RegisterMissedPayment counts one more day the client did not pay on a visit.
// No payment is stored.
func (s *CreditService) RegisterMissedPayment(ctx context.Context, actor Actor, id uint) (*CreditSummary, error) {
	var result *CreditSummary
	err := s.mutate(ctx, actor, id, func(tx *repository.Repositories, credit *models.Credit) error {
		payments, li, err := s.ledgerOf(ctx, tx, credit)
		if err != nil {
			return err
		}
		if err := lending.CheckMissedPayment(credit, li); err != nil {
			return err
		}
		credit.MissedPaymentDays++
		if err := tx.Credit.Update(ctx, credit); err != nil {
			return err
		}
		details := fmt.Sprintf("días de impago: %d", credit.MissedPaymentDays)
		if err := s.audit.Record(ctx, tx.Audit, actor, models.AuditActionMissed, "credit", credit.ID, details); err != nil {
			return err
		}
		result = &CreditSummary{Credit: credit.ToResponse(), Summary: lending.Summarize(credit, payments, li, s.now())}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RegisterPaymentAgreement records a negotiated payoff figure. The agreement
// replaces the late fee in the payoff but never changes the late fee itself.
func (s *CreditService) RegisterPaymentAgreement(ctx context.Context, actor Actor, id uint, amount decimal.Decimal) (*CreditSummary, error) {
	var result *CreditSummary
	err := s.mutate(ctx, actor, id, func(tx *repository.Repositories, credit *models.Credit) error {
		payments, li, err := s.ledgerOf(ctx, tx, credit)
		if err != nil {
			return err
		}
		asOf := s.now()
		if err := lending.CheckAgreement(credit, payments, li, amount, asOf); err != nil {
			return err
		}
		agreed := amount.Round(2)
		credit.AgreementAmount = &agreed
		if err := tx.Credit.Update(ctx, credit); err != nil {
			return err
		}
		details := fmt.Sprintf("acuerdo por %s", agreed.StringFixed(2))
		if err := s.audit.Record(ctx, tx.Audit, actor, models.AuditActionAgreement, "credit", credit.ID, details); err != nil {
			return err
		}
		result = &CreditSummary{Credit: credit.ToResponse(), Summary: lending.Summarize(credit, payments, li, asOf)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Renew closes an open credit and opens a pending successor whose principal
// is the old balance plus the additional amount.
func (s *CreditService) Renew(ctx context.Context, actor Actor, id uint, input RenewCreditInput) (*SuccessionResult, error) {
	if err := lending.ValidateInstallmentCount(input.InstallmentCount); err != nil {
		return nil, wrapErr(err)
	}
	return s.succeed(ctx, actor, id, input.InstallmentCount, models.AuditActionRenew,
		func(credit *models.Credit, payments []models.Payment, _ lending.LateInterest, _ time.Time) (decimal.Decimal, error) {
			return lending.RenewalPrincipal(credit, payments, input.AdditionalAmount)
		},
		func(ctx context.Context, sm *statemachine.CreditFSM) error { return sm.Renew(ctx) },
	)
}

// Refinance closes an open credit and rolls its whole debt, late fee
// included, into a pending successor.
func (s *CreditService) Refinance(ctx context.Context, actor Actor, id uint, installmentCount int) (*SuccessionResult, error) {
	if err := lending.ValidateInstallmentCount(installmentCount); err != nil {
		return nil, wrapErr(err)
	}
	return s.succeed(ctx, actor, id, installmentCount, models.AuditActionRefinance,
		lending.RefinancePrincipal,
		func(ctx context.Context, sm *statemachine.CreditFSM) error { return sm.Refinance(ctx) },
	)
}

type principalFunc func(credit *models.Credit, payments []models.Payment, li lending.LateInterest, asOf time.Time) (decimal.Decimal, error)

// succeed replaces credit id with a successor credit in one transaction
func (s *CreditService) succeed(
	ctx context.Context,
	actor Actor,
	id uint,
	installmentCount int,
	action string,
	principalOf principalFunc,
	transition func(context.Context, *statemachine.CreditFSM) error,
) (*SuccessionResult, error) {
	var result *SuccessionResult
	var previous *models.Credit

	err := s.mutate(ctx, actor, id, func(tx *repository.Repositories, credit *models.Credit) error {
		settings, err := s.settingsOf(ctx, tx.Settings, credit.ProviderID)
		if err != nil {
			return err
		}
		li := lending.LateInterestOf(settings)
		payments, err := tx.Payment.FindByCredit(ctx, credit.ID)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}

		asOf := s.now()
		principal, err := principalOf(credit, payments, li, asOf)
		if err != nil {
			return err
		}
		var tiers []models.CommissionTier
		if settings != nil {
			tiers = settings.CommissionTiers
		}
		commission, err := lending.ResolveCommission(principal, tiers)
		if err != nil {
			return err
		}

		if err := transition(ctx, statemachine.NewCreditFSM(credit)); err != nil {
			return err
		}
		end := asOf
		credit.EndDate = &end

		predecessor := credit.ID
		successor := &models.Credit{
			GUID:                uuid.NewString(),
			ClientID:            credit.ClientID,
			CollectorID:         credit.CollectorID,
			ProviderID:          credit.ProviderID,
			Principal:           principal.Round(2),
			CommissionAmount:    commission,
			InstallmentCount:    installmentCount,
			Status:              models.CreditStatusPending,
			PredecessorCreditID: &predecessor,
			CreatedAt:           asOf,
		}
		if err := tx.Credit.Create(ctx, successor); err != nil {
			return fmt.Errorf("failed to create successor credit: %w", err)
		}
		credit.SuccessorCreditID = &successor.ID
		if err := tx.Credit.Update(ctx, credit); err != nil {
			return err
		}

		details := fmt.Sprintf("reemplazado por el crédito %d con principal %s", successor.ID, successor.Principal.StringFixed(2))
		if err := s.audit.Record(ctx, tx.Audit, actor, action, "credit", credit.ID, details); err != nil {
			return err
		}
		result = &SuccessionResult{Previous: credit.ToResponse(), Credit: successor.ToResponse()}
		previous = credit
		return nil
	})
	if err != nil {
		return nil, err
	}

	title, notifType := "Crédito renovado", models.NotificationTypeCreditRenewed
	if action == models.AuditActionRefinance {
		title, notifType = "Crédito refinanciado", models.NotificationTypeCreditRefinance
	}
	s.notifier.notifyCredit(ctx, previous, title,
		fmt.Sprintf("El crédito %s fue reemplazado por un nuevo crédito de %s", previous.GUID, result.Credit.Principal.StringFixed(2)),
		notifType)
	return result, nil
}

// SavePaymentSchedule assigns the due date of every installment
func (s *CreditService) SavePaymentSchedule(ctx context.Context, actor Actor, id uint, dates []time.Time) (*models.Credit, error) {
	var saved *models.Credit
	err := s.mutate(ctx, actor, id, func(tx *repository.Repositories, credit *models.Credit) error {
		if err := lending.CheckSchedulable(credit); err != nil {
			return err
		}
		if err := lending.ValidateSchedule(credit, dates, s.now()); err != nil {
			return err
		}
		credit.PaymentSchedule = lending.NormalizeSchedule(dates)
		if err := tx.Credit.Update(ctx, credit); err != nil {
			return err
		}
		details := fmt.Sprintf("%d fechas desde %s", len(dates), credit.PaymentSchedule[0].Format(models.DateLayout))
		if err := s.audit.Record(ctx, tx.Audit, actor, models.AuditActionSchedule, "credit", credit.ID, details); err != nil {
			return err
		}
		saved = credit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// AcceptContract activates a pending credit and queues its contract document
func (s *CreditService) AcceptContract(ctx context.Context, actor Actor, id uint) (*models.Credit, error) {
	var accepted *models.Credit
	err := s.mutate(ctx, actor, id, func(tx *repository.Repositories, credit *models.Credit) error {
		if err := statemachine.NewCreditFSM(credit).Accept(ctx); err != nil {
			return err
		}
		at := s.now()
		credit.AcceptedAt = &at
		if err := tx.Credit.Update(ctx, credit); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx.Audit, actor, models.AuditActionAccept, "credit", credit.ID, "contrato aceptado"); err != nil {
			return err
		}
		accepted = credit
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.queueContract(accepted)
	s.notifier.notifyCredit(ctx, accepted, "Contrato aceptado",
		fmt.Sprintf("El contrato del crédito %s fue aceptado", accepted.GUID), models.NotificationTypeCreditAccepted)
	return accepted, nil
}

func (s *CreditService) queueContract(credit *models.Credit) {
	if s.worker == nil || s.contracts == nil {
		return
	}
	creditID := credit.ID
	s.worker.EnqueueAsync(fmt.Sprintf("contract_pdf:%d", creditID), func(ctx context.Context) error {
		return s.contracts.GenerateContract(ctx, creditID)
	})
}

// MarkDefaulted writes off an open credit
func (s *CreditService) MarkDefaulted(ctx context.Context, actor Actor, id uint) (*models.Credit, error) {
	var defaulted *models.Credit
	err := s.mutate(ctx, actor, id, func(tx *repository.Repositories, credit *models.Credit) error {
		if err := statemachine.NewCreditFSM(credit).Default(ctx); err != nil {
			return err
		}
		end := s.now()
		credit.EndDate = &end
		if err := tx.Credit.Update(ctx, credit); err != nil {
			return err
		}
		details := fmt.Sprintf("castigado con %d días de impago", credit.MissedPaymentDays)
		if err := s.audit.Record(ctx, tx.Audit, actor, models.AuditActionDefault, "credit", credit.ID, details); err != nil {
			return err
		}
		defaulted = credit
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.notifyCredit(ctx, defaulted, "Crédito castigado",
		fmt.Sprintf("El crédito %s fue marcado como incobrable", defaulted.GUID), models.NotificationTypeCreditDefaulted)
	return defaulted, nil
}

// ScanDefaults marks as defaulted every open credit late past its provider's
// DefaultAfterDays. It returns how many credits were written off.
func (s *CreditService) ScanDefaults(ctx context.Context) (int, error) {
	all, err := s.repos.Settings.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load provider settings: %w", err)
	}
	thresholds := make(map[uint]int, len(all))
	for _, st := range all {
		if st.DefaultAfterDays > 0 {
			thresholds[st.ProviderID] = st.DefaultAfterDays
		}
	}
	if len(thresholds) == 0 {
		return 0, nil
	}

	credits, err := s.repos.Credit.FindOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load open credits: %w", err)
	}

	asOf := s.now()
	count := 0
	for i := range credits {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		credit := &credits[i]
		if !lending.DefaultDue(credit, thresholds[credit.ProviderID], asOf) {
			continue
		}
		if _, err := s.MarkDefaulted(ctx, SystemActor, credit.ID); err != nil {
			// another request may have settled the credit in the meantime
			logger.FromContext(ctx).Warn("failed to default credit",
				slog.Uint64("credit_id", uint64(credit.ID)), slog.String("error", err.Error()))
			continue
		}
		count++
	}
	logger.FromContext(ctx).Info("default scan finished", slog.Int("defaulted", count), slog.Int("open", len(credits)))
	return count, nil
}

// ContractPath returns the stored contract document of a credit
func (s *CreditService) ContractPath(ctx context.Context, actor Actor, id uint) (string, error) {
	credit, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if credit.ContractDocumentPath == nil || *credit.ContractDocumentPath == "" {
		return "", newError(KindNotFound, "el contrato aún no ha sido generado")
	}
	return *credit.ContractDocumentPath, nil
}

// mutate runs fn on a freshly read credit inside a transaction, retrying the
// whole cycle once if the credit changed underneath it.
func (s *CreditService) mutate(ctx context.Context, actor Actor, id uint, fn func(tx *repository.Repositories, credit *models.Credit) error) error {
	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
			credit, err := tx.Credit.FindByID(ctx, id)
			if err != nil {
				return creditLookupErr(err)
			}
			if !actor.CanAccessCredit(credit) {
				return ErrForbidden
			}
			return fn(tx, credit)
		})
		if !errors.Is(err, repository.ErrStaleVersion) {
			break
		}
		logger.FromContext(ctx).Warn("credit changed concurrently",
			slog.Uint64("credit_id", uint64(id)), slog.Int("attempt", attempt))
	}
	return wrapErr(err)
}

// ledgerOf loads the payments and late-interest settings of a credit
func (s *CreditService) ledgerOf(ctx context.Context, repos *repository.Repositories, credit *models.Credit) ([]models.Payment, lending.LateInterest, error) {
	payments, err := repos.Payment.FindByCredit(ctx, credit.ID)
	if err != nil {
		return nil, lending.LateInterest{}, fmt.Errorf("failed to load payments: %w", err)
	}
	settings, err := s.settingsOf(ctx, repos.Settings, credit.ProviderID)
	if err != nil {
		return nil, lending.LateInterest{}, err
	}
	return payments, lending.LateInterestOf(settings), nil
}

// settingsOf returns nil when the provider has not saved settings yet
func (s *CreditService) settingsOf(ctx context.Context, repo repository.SettingsRepository, providerID uint) (*models.ProviderSettings, error) {
	settings, err := repo.FindByProvider(ctx, providerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load provider settings: %w", err)
	}
	return settings, nil
}

func (s *CreditService) asOf(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

func creditLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("crédito")
	}
	return err
}
