package repository

import (
	"context"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for payment data access.
// Payments are append-only: there is no update or delete.
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByCredit(ctx context.Context, creditID uint) ([]models.Payment, error)
	FindByCredits(ctx context.Context, creditIDs []uint) (map[uint][]models.Payment, error)
	FindByCollectorBetween(ctx context.Context, collectorID uint, from, to time.Time) ([]models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByCredit(ctx context.Context, creditID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Order("date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindByCredits(ctx context.Context, creditIDs []uint) (map[uint][]models.Payment, error) {
	out := make(map[uint][]models.Payment, len(creditIDs))
	if len(creditIDs) == 0 {
		return out, nil
	}

	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("credit_id IN ?", creditIDs).
		Order("date ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		out[p.CreditID] = append(out[p.CreditID], p)
	}
	return out, nil
}

func (r *paymentRepository) FindByCollectorBetween(ctx context.Context, collectorID uint, from, to time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("collector_id = ? AND date >= ? AND date <= ?", collectorID, from, to).
		Order("date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}
