package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/recaudoseguro/recaudo-api/internal/lending"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var maxLateInterestRate = decimal.NewFromInt(100)

// SettingsService manages the lending configuration of providers
type SettingsService struct {
	repo  repository.SettingsRepository
	audit *AuditService
}

func NewSettingsService(repo repository.SettingsRepository, audit *AuditService) *SettingsService {
	return &SettingsService{repo: repo, audit: audit}
}

// SaveSettingsInput is the editable part of ProviderSettings
type SaveSettingsInput struct {
	CommissionTiers    []models.CommissionTier `json:"commission_tiers" binding:"required"`
	LateInterestRate   decimal.Decimal         `json:"late_interest_rate"`
	LateInterestActive bool                    `json:"late_interest_active"`
	DefaultAfterDays   int                     `json:"default_after_days"`
}

// Get returns the provider's settings. A provider that never saved any gets
// empty tiers and late interest off.
func (s *SettingsService) Get(ctx context.Context, actor Actor, providerID uint) (*models.ProviderSettings, error) {
	if !actor.CanViewProvider(providerID) {
		return nil, ErrForbidden
	}
	return s.load(ctx, providerID)
}

func (s *SettingsService) load(ctx context.Context, providerID uint) (*models.ProviderSettings, error) {
	settings, err := s.repo.FindByProvider(ctx, providerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.ProviderSettings{
			ProviderID:       providerID,
			CommissionTiers:  []models.CommissionTier{},
			LateInterestRate: decimal.Zero,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load provider settings: %w", err)
	}
	return settings, nil
}

// Save validates and stores the provider's settings
func (s *SettingsService) Save(ctx context.Context, actor Actor, providerID uint, input SaveSettingsInput) (*models.ProviderSettings, error) {
	if !actor.CanManageProvider(providerID) {
		return nil, ErrForbidden
	}
	if err := lending.ValidateTiers(input.CommissionTiers); err != nil {
		return nil, wrapErr(err)
	}
	if input.LateInterestRate.IsNegative() || input.LateInterestRate.GreaterThan(maxLateInterestRate) {
		return nil, newError(KindValidation, "la tasa de interés por mora debe estar entre 0 y 100")
	}
	if input.LateInterestActive && !input.LateInterestRate.IsPositive() {
		return nil, newError(KindValidation, "la tasa de interés por mora debe ser mayor a cero para activarla")
	}
	if input.DefaultAfterDays < 0 {
		return nil, newError(KindValidation, "los días para castigar un crédito no pueden ser negativos")
	}

	settings := &models.ProviderSettings{
		ProviderID:         providerID,
		CommissionTiers:    input.CommissionTiers,
		LateInterestRate:   input.LateInterestRate,
		LateInterestActive: input.LateInterestActive,
		DefaultAfterDays:   input.DefaultAfterDays,
	}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save provider settings: %w", err)
	}

	details := fmt.Sprintf("%d tramos, mora %s%% activa=%t, castigo a %d días",
		len(settings.CommissionTiers), settings.LateInterestRate.String(), settings.LateInterestActive, settings.DefaultAfterDays)
	if err := s.audit.Record(ctx, nil, actor, models.AuditActionUpdate, "provider_settings", providerID, details); err != nil {
		return nil, err
	}
	return settings, nil
}

// CommissionQuote is the commission a principal would carry
type CommissionQuote struct {
	Principal  decimal.Decimal       `json:"principal"`
	Commission decimal.Decimal       `json:"commission"`
	Tier       models.CommissionTier `json:"tier"`
	Total      decimal.Decimal       `json:"total"`
}

// ResolveCommission quotes the commission of a principal under the provider's tiers
func (s *SettingsService) ResolveCommission(ctx context.Context, actor Actor, providerID uint, principal decimal.Decimal) (*CommissionQuote, error) {
	if !actor.CanViewProvider(providerID) {
		return nil, ErrForbidden
	}
	settings, err := s.load(ctx, providerID)
	if err != nil {
		return nil, err
	}
	commission, err := lending.ResolveCommission(principal, settings.CommissionTiers)
	if err != nil {
		return nil, wrapErr(err)
	}
	tier, err := lending.MatchTier(principal, settings.CommissionTiers)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &CommissionQuote{
		Principal:  principal,
		Commission: commission,
		Tier:       *tier,
		Total:      principal.Add(commission),
	}, nil
}
