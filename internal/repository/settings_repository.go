package repository

import (
	"context"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository defines the interface for provider settings access
type SettingsRepository interface {
	FindByProvider(ctx context.Context, providerID uint) (*models.ProviderSettings, error)
	FindAll(ctx context.Context) ([]models.ProviderSettings, error)
	Upsert(ctx context.Context, settings *models.ProviderSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new provider settings repository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) FindByProvider(ctx context.Context, providerID uint) (*models.ProviderSettings, error) {
	var settings models.ProviderSettings
	err := r.db.WithContext(ctx).Where("provider_id = ?", providerID).First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) FindAll(ctx context.Context) ([]models.ProviderSettings, error) {
	var settings []models.ProviderSettings
	err := r.db.WithContext(ctx).Find(&settings).Error
	return settings, err
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *models.ProviderSettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"commission_tiers", "late_interest_rate", "late_interest_active", "default_after_days", "updated_at"}),
	}).Create(settings).Error
}
