package repository

import (
	"context"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"gorm.io/gorm"
)

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Client, error)
	FindByCollector(ctx context.Context, collectorID uint) ([]models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	UpdateReputation(ctx context.Context, id uint, score int, scoredAt time.Time) error
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).First(&client, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindByCollector(ctx context.Context, collectorID uint) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.WithContext(ctx).
		Where("collector_id = ?", collectorID).
		Order("full_name ASC").
		Find(&clients).Error
	return clients, err
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) UpdateReputation(ctx context.Context, id uint, score int, scoredAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reputation_score": score,
			"scored_at":        scoredAt,
		}).Error
}
