package repository

import (
	"context"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var openCreditStatuses = []string{models.CreditStatusActive, models.CreditStatusPartiallyPaid}

// CreditRepository defines the interface for credit data access
type CreditRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Credit, error)
	FindByIDWithClient(ctx context.Context, id uint) (*models.Credit, error)
	FindOpenByCollector(ctx context.Context, collectorID uint) ([]models.Credit, error)
	FindOpen(ctx context.Context) ([]models.Credit, error)
	FindByClient(ctx context.Context, clientID uint) ([]models.Credit, error)
	Create(ctx context.Context, credit *models.Credit) error
	Update(ctx context.Context, credit *models.Credit) error
	SetContractPath(ctx context.Context, id uint, path string) error
	List(ctx context.Context, query *CreditQuery) ([]models.Credit, int64, error)
}

// CreditQuery extends ListQuery with credit-specific filters
type CreditQuery struct {
	*ListQuery
	ProviderID  uint
	CollectorID uint
	ClientID    uint
	Status      string
}

type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new credit repository
func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) FindByID(ctx context.Context, id uint) (*models.Credit, error) {
	var credit models.Credit
	err := r.db.WithContext(ctx).First(&credit, id).Error
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *creditRepository) FindByIDWithClient(ctx context.Context, id uint) (*models.Credit, error) {
	var credit models.Credit
	err := r.db.WithContext(ctx).Preload("Client").First(&credit, id).Error
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *creditRepository) FindOpenByCollector(ctx context.Context, collectorID uint) ([]models.Credit, error) {
	var credits []models.Credit
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("collector_id = ? AND status IN ?", collectorID, openCreditStatuses).
		Order("id ASC").
		Find(&credits).Error
	return credits, err
}

func (r *creditRepository) FindOpen(ctx context.Context) ([]models.Credit, error) {
	var credits []models.Credit
	err := r.db.WithContext(ctx).
		Where("status IN ?", openCreditStatuses).
		Order("id ASC").
		Find(&credits).Error
	return credits, err
}

func (r *creditRepository) FindByClient(ctx context.Context, clientID uint) ([]models.Credit, error) {
	var credits []models.Credit
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&credits).Error
	return credits, err
}

func (r *creditRepository) Create(ctx context.Context, credit *models.Credit) error {
	if credit.Version == 0 {
		credit.Version = 1
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(credit).Error
}

// Update writes every column of credit only if nobody changed the row since it
// was read. On success the in-memory version is bumped; on conflict it is left
// untouched and ErrStaleVersion is returned.
func (r *creditRepository) Update(ctx context.Context, credit *models.Credit) error {
	read := credit.Version
	credit.Version = read + 1

	res := r.db.WithContext(ctx).
		Model(credit).
		Where("version = ?", read).
		Select("*").
		Omit(clause.Associations, "id", "created_at").
		Updates(credit)
	if res.Error != nil {
		credit.Version = read
		return res.Error
	}
	if res.RowsAffected == 0 {
		credit.Version = read
		return ErrStaleVersion
	}
	return nil
}

// SetContractPath stores the generated contract location without touching the version;
// the path is not part of the credit's financial state.
func (r *creditRepository) SetContractPath(ctx context.Context, id uint, path string) error {
	return r.db.WithContext(ctx).
		Model(&models.Credit{}).
		Where("id = ?", id).
		Update("contract_document_path", path).Error
}

func (r *creditRepository) List(ctx context.Context, query *CreditQuery) ([]models.Credit, int64, error) {
	var credits []models.Credit
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Credit{})

	if query.ProviderID != 0 {
		db = db.Where("credits.provider_id = ?", query.ProviderID)
	}
	if query.CollectorID != 0 {
		db = db.Where("credits.collector_id = ?", query.CollectorID)
	}
	if query.ClientID != 0 {
		db = db.Where("credits.client_id = ?", query.ClientID)
	}
	if query.Status != "" {
		db = db.Where("credits.status = ?", query.Status)
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("JOIN clients ON clients.id = credits.client_id").
			Where("clients.full_name ILIKE ? OR clients.identity ILIKE ? OR credits.guid ILIKE ?", search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch query.SortBy {
	case "principal", "created_at", "status":
		order := "credits." + query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	default:
		db = db.Order("credits.created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Client").Find(&credits).Error
	return credits, total, err
}
