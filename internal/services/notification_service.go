package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/pkg/logger"
	"gorm.io/gorm"
)

type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, now: time.Now}
}

func (s *NotificationService) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return s.repo.FindByUser(ctx, userID, query)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkAsRead marks one of the user's notifications as read
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uint) error {
	err := s.repo.MarkAsRead(ctx, userID, id, s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AppError{Kind: KindNotFound, Message: "notificación no encontrada", Err: ErrNotFound}
	}
	return err
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID, s.now())
}

// NotifyUser stores an in-app notification, optionally about a credit
func (s *NotificationService) NotifyUser(ctx context.Context, userID uint, title, message, notifType string, creditID *uint) error {
	notification := &models.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		NotificationType: &notifType,
		CreditID:         creditID,
	}
	return s.repo.Create(ctx, notification)
}

// NotifyAdmins sends the same notification to every administrator
func (s *NotificationService) NotifyAdmins(ctx context.Context, title, message, notifType string) error {
	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		if err := s.NotifyUser(ctx, admin.ID, title, message, notifType, nil); err != nil {
			logger.FromContext(ctx).Warn("failed to notify admin",
				slog.Uint64("admin_id", uint64(admin.ID)), slog.String("error", err.Error()))
		}
	}
	return nil
}

// notifyCredit tells the collector and the provider of a credit about an event.
// Delivery failures are logged and never fail the operation that triggered them.
func (s *NotificationService) notifyCredit(ctx context.Context, credit *models.Credit, title, message, notifType string) {
	if s == nil || credit == nil {
		return
	}
	id := credit.ID
	recipients := []uint{credit.CollectorID}
	if credit.ProviderID != 0 && credit.ProviderID != credit.CollectorID {
		recipients = append(recipients, credit.ProviderID)
	}
	for _, userID := range recipients {
		if err := s.NotifyUser(ctx, userID, title, message, notifType, &id); err != nil {
			logger.FromContext(ctx).Warn("failed to store notification",
				slog.Uint64("user_id", uint64(userID)),
				slog.Uint64("credit_id", uint64(id)),
				slog.String("error", err.Error()))
		}
	}
}
