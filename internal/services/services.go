package services

import (
	"github.com/recaudoseguro/recaudo-api/internal/config"
	"github.com/recaudoseguro/recaudo-api/internal/jobs"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Client       *ClientService
	Credit       *CreditService
	Route        *RouteService
	Settings     *SettingsService
	Notification *NotificationService
	Report       *ReportService
	Audit        *AuditService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	auditSvc := NewAuditService(repos.Audit)
	routeSvc := NewRouteService(repos, cfg.WorkerCount, cfg.Location)
	reportSvc := NewReportService(repos, routeSvc, store, notificationSvc, cfg.CompanyName, cfg.Location)
	creditSvc := NewCreditService(repos, auditSvc, notificationSvc, worker, reportSvc, cfg.Location)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, auditSvc, cfg),
		User:         NewUserService(repos.User, auditSvc),
		Client:       NewClientService(repos, auditSvc, NewRuleBasedAdvisor()),
		Credit:       creditSvc,
		Route:        routeSvc,
		Settings:     NewSettingsService(repos.Settings, auditSvc),
		Notification: notificationSvc,
		Report:       reportSvc,
		Audit:        auditSvc,
		Job:          NewJobService(worker, creditSvc, repos.RefreshToken, notificationSvc),
	}
}
