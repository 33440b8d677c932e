package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/services"
	"github.com/shopspring/decimal"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// @Summary Get Provider Settings
// @Description Commission tiers and late interest of a provider
// @Tags Settings
// @Produce json
// @Param provider_id path int true "Provider ID"
// @Success 200 {object} models.ProviderSettings
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /providers/{provider_id}/settings [get]
func (h *SettingsHandler) Show(c *gin.Context) {
	providerID, ok := paramID(c, "provider_id")
	if !ok {
		return
	}

	settings, err := h.settingsService.Get(c.Request.Context(), actorFrom(c), providerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// @Summary Save Provider Settings
// @Description Replaces the commission tiers and late interest of a provider
// @Tags Settings
// @Accept json
// @Produce json
// @Param provider_id path int true "Provider ID"
// @Param request body services.SaveSettingsInput true "Settings"
// @Success 200 {object} models.ProviderSettings
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /providers/{provider_id}/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	providerID, ok := paramID(c, "provider_id")
	if !ok {
		return
	}
	var req services.SaveSettingsInput
	if err := BindNestedOrFlat(c, "settings", &req); err != nil {
		badRequest(c, "cuerpo de la solicitud inválido")
		return
	}

	settings, err := h.settingsService.Save(c.Request.Context(), actorFrom(c), providerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type ResolveCommissionRequest struct {
	ProviderID uint            `json:"provider_id"`
	Principal  decimal.Decimal `json:"principal"`
}

// @Summary Resolve Commission
// @Description Quotes the commission of a principal. The provider defaults to the caller's.
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body ResolveCommissionRequest true "Principal"
// @Success 200 {object} services.CommissionQuote
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /commissions/resolve [post]
func (h *SettingsHandler) ResolveCommission(c *gin.Context) {
	var req ResolveCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "principal es requerido")
		return
	}

	actor := actorFrom(c)
	providerID := req.ProviderID
	if providerID == 0 {
		providerID = actor.ProviderID
		if actor.Role == models.RoleProvider {
			providerID = actor.UserID
		}
	}

	quote, err := h.settingsService.ResolveCommission(c.Request.Context(), actor, providerID, req.Principal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
