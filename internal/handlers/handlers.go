package handlers

import (
	"github.com/recaudoseguro/recaudo-api/internal/services"
	"github.com/recaudoseguro/recaudo-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Client       *ClientHandler
	Credit       *CreditHandler
	Route        *RouteHandler
	Settings     *SettingsHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, storage *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Client:       NewClientHandler(svcs.Client),
		Credit:       NewCreditHandler(svcs.Credit, svcs.Audit, storage),
		Route:        NewRouteHandler(svcs.Route, svcs.Report),
		Settings:     NewSettingsHandler(svcs.Settings),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}
