package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recaudoseguro/recaudo-api/internal/services"
)

type ClientHandler struct {
	clientService *services.ClientService
}

func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// @Summary Create Client
// @Description Registers a client on a collector's route
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body services.CreateClientInput true "Client"
// @Success 201 {object} models.Client
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req services.CreateClientInput
	if err := BindNestedOrFlat(c, "client", &req); err != nil {
		badRequest(c, "cuerpo de la solicitud inválido")
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

// @Summary Get Client
// @Tags Clients
// @Produce json
// @Param client_id path int true "Client ID"
// @Success 200 {object} models.Client
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /clients/{client_id} [get]
func (h *ClientHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "client_id")
	if !ok {
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

// @Summary Collector Clients
// @Tags Clients
// @Produce json
// @Param collector_id path int true "Collector ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /collectors/{collector_id}/clients [get]
func (h *ClientHandler) IndexByCollector(c *gin.Context) {
	collectorID, ok := paramID(c, "collector_id")
	if !ok {
		return
	}

	clients, err := h.clientService.ListByCollector(c.Request.Context(), actorFrom(c), collectorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// @Summary Client Reputation
// @Description Scores the client's repayment history and returns lending advice
// @Tags Clients
// @Produce json
// @Param client_id path int true "Client ID"
// @Success 200 {object} services.Advice
// @Security BearerAuth
// @Router /clients/{client_id}/reputation [post]
func (h *ClientHandler) Reputation(c *gin.Context) {
	id, ok := paramID(c, "client_id")
	if !ok {
		return
	}

	advice, err := h.clientService.Reputation(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, advice)
}
