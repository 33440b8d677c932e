package services

import (
	"context"
	"fmt"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
)

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record writes an audit entry through repo, which may be bound to a transaction.
// A nil repo uses the service's own repository.
func (s *AuditService) Record(ctx context.Context, repo repository.AuditRepository, actor Actor, action, entity string, entityID uint, details string) error {
	if repo == nil {
		repo = s.repo
	}
	entry := &models.AuditLog{
		UserID:    actor.UserID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if err := repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// History returns the audit trail of one entity in the order it happened
func (s *AuditService) History(ctx context.Context, entity string, entityID uint) ([]models.AuditLog, error) {
	return s.repo.FindByEntity(ctx, entity, entityID)
}

// List retrieves audit logs page by page
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, limit, offset)
}
