package services

import "github.com/recaudoseguro/recaudo-api/internal/models"

// RoleSystem identifies background jobs acting without a user
const RoleSystem = "system"

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID     uint
	Role       string
	ProviderID uint
	IP         string
	UserAgent  string
}

// SystemActor is used by scheduled jobs
var SystemActor = Actor{Role: RoleSystem}

func (a Actor) isPrivileged() bool {
	return a.Role == models.RoleAdmin || a.Role == RoleSystem
}

// providerID returns the provider whose data the actor works on
func (a Actor) providerID() uint {
	if a.Role == models.RoleProvider {
		return a.UserID
	}
	return a.ProviderID
}

// CanAccessCredit reports whether the actor may read or change the credit
func (a Actor) CanAccessCredit(c *models.Credit) bool {
	switch {
	case a.isPrivileged():
		return true
	case a.Role == models.RoleProvider:
		return c.ProviderID == a.UserID
	case a.Role == models.RoleCollector:
		return c.CollectorID == a.UserID
	}
	return false
}

// CanAccessClient reports whether the actor may read or change the client
func (a Actor) CanAccessClient(c *models.Client) bool {
	switch {
	case a.isPrivileged():
		return true
	case a.Role == models.RoleProvider:
		return c.ProviderID == a.UserID
	case a.Role == models.RoleCollector:
		return c.CollectorID == a.UserID
	}
	return false
}

// CanManageProvider reports whether the actor may change the provider's settings
func (a Actor) CanManageProvider(providerID uint) bool {
	return a.isPrivileged() || (a.Role == models.RoleProvider && a.UserID == providerID)
}

// CanViewProvider reports whether the actor may read the provider's settings
func (a Actor) CanViewProvider(providerID uint) bool {
	return a.CanManageProvider(providerID) || (a.Role == models.RoleCollector && a.ProviderID == providerID)
}

// CanViewCollector reports whether the actor may see the collector's route
func (a Actor) CanViewCollector(collector *models.User) bool {
	switch {
	case a.isPrivileged():
		return true
	case a.Role == models.RoleCollector:
		return a.UserID == collector.ID
	case a.Role == models.RoleProvider:
		return collector.ProviderID != nil && *collector.ProviderID == a.UserID
	}
	return false
}
