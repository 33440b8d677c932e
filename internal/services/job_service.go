package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/jobs"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/pkg/logger"
)

// Scheduled job names
const (
	JobScanDefaults        = "scan_defaults"
	JobPurgeRefreshTokens  = "purge_refresh_tokens"
	refreshTokenPurgeEvery = time.Hour
)

// JobService registers the scheduled jobs and reports on the worker
type JobService struct {
	worker        *jobs.Worker
	credits       *CreditService
	tokens        repository.RefreshTokenRepository
	notifications *NotificationService
	now           func() time.Time
	jobs          map[string]jobs.Job
}

func NewJobService(worker *jobs.Worker, credits *CreditService, tokens repository.RefreshTokenRepository, notifications *NotificationService) *JobService {
	s := &JobService{
		worker:        worker,
		credits:       credits,
		tokens:        tokens,
		notifications: notifications,
		now:           time.Now,
	}
	s.jobs = map[string]jobs.Job{
		JobScanDefaults:       s.scanDefaults,
		JobPurgeRefreshTokens: s.purgeRefreshTokens,
	}
	return s
}

// Start schedules the recurring jobs on the worker
func (s *JobService) Start(defaultScanHour int, loc *time.Location) {
	s.worker.ScheduleDaily(JobScanDefaults, defaultScanHour, loc, s.scanDefaults)
	s.worker.ScheduleEvery(JobPurgeRefreshTokens, refreshTokenPurgeEvery, s.purgeRefreshTokens)
	logger.Info("[JobService] Scheduled jobs registered",
		slog.String("daily", JobScanDefaults), slog.Int("hour", defaultScanHour),
		slog.String("hourly", JobPurgeRefreshTokens))
}

// RunNow queues a known job for immediate execution
func (s *JobService) RunNow(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return notFound("trabajo")
	}
	s.worker.Enqueue(name, job)
	return nil
}

func (s *JobService) scanDefaults(ctx context.Context) error {
	count, err := s.credits.ScanDefaults(ctx)
	if err != nil {
		return err
	}
	if count > 0 && s.notifications != nil {
		return s.notifications.NotifyAdmins(ctx, "Créditos castigados",
			fmt.Sprintf("La revisión diaria marcó %d créditos como incobrables", count),
			models.NotificationTypeCreditDefaulted)
	}
	return nil
}

func (s *JobService) purgeRefreshTokens(ctx context.Context) error {
	if s.tokens == nil {
		return nil
	}
	removed, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to purge refresh tokens: %w", err)
	}
	logger.FromContext(ctx).Info("expired refresh tokens purged", slog.Int64("removed", removed))
	return nil
}

func (s *JobService) GetStatus() jobs.WorkerStats {
	return s.worker.GetStats()
}
