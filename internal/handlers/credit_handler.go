package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/internal/services"
	"github.com/recaudoseguro/recaudo-api/internal/storage"
	"github.com/shopspring/decimal"
)

type CreditHandler struct {
	creditService *services.CreditService
	auditService  *services.AuditService
	storage       *storage.LocalStorage
}

func NewCreditHandler(creditService *services.CreditService, auditService *services.AuditService, storage *storage.LocalStorage) *CreditHandler {
	return &CreditHandler{creditService: creditService, auditService: auditService, storage: storage}
}

// CreateCreditRequest opens a credit. Dates use the YYYY-MM-DD format.
type CreateCreditRequest struct {
	ClientID         uint            `json:"client_id"`
	Principal        decimal.Decimal `json:"principal"`
	InstallmentCount int             `json:"installment_count"`
	PaymentSchedule  []string        `json:"payment_schedule"`
}

type ScheduleRequest struct {
	Dates []string `json:"dates"`
}

type AgreementRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type RefinanceRequest struct {
	InstallmentCount int `json:"installment_count"`
}

func parseDates(raw []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		d, err := time.Parse(models.DateLayout, r)
		if err != nil {
			return nil, fmt.Errorf("fecha inválida %q, use el formato AAAA-MM-DD", r)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// @Summary List Credits
// @Description Paginated credits visible to the caller
// @Tags Credits
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param client_id query int false "Filter by client"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /credits [get]
func (h *CreditHandler) Index(c *gin.Context) {
	query := &repository.CreditQuery{ListQuery: listQuery(c), Status: c.Query("status")}
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			badRequest(c, "client_id inválido")
			return
		}
		query.ClientID = uint(clientID)
	}

	credits, total, err := h.creditService.List(c.Request.Context(), actorFrom(c), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.CreditResponse, 0, len(credits))
	for i := range credits {
		responses = append(responses, credits[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"credits":    responses,
		"pagination": pagination(query.ListQuery, total),
	})
}

// @Summary Create Credit
// @Description Opens a pending credit; the commission comes from the provider's tiers
// @Tags Credits
// @Accept json
// @Produce json
// @Param request body CreateCreditRequest true "Credit"
// @Success 201 {object} models.CreditResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /credits [post]
func (h *CreditHandler) Create(c *gin.Context) {
	var req CreateCreditRequest
	if err := BindNestedOrFlat(c, "credit", &req); err != nil {
		badRequest(c, "cuerpo de la solicitud inválido")
		return
	}
	schedule, err := parseDates(req.PaymentSchedule)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	credit, err := h.creditService.Create(c.Request.Context(), actorFrom(c), services.CreateCreditInput{
		ClientID:         req.ClientID,
		Principal:        req.Principal,
		InstallmentCount: req.InstallmentCount,
		PaymentSchedule:  schedule,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"credit": credit.ToResponse()})
}

// @Summary Get Credit
// @Description A credit with its financial summary as of today
// @Tags Credits
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Success 200 {object} services.CreditSummary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id} [get]
func (h *CreditHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}
	asOf, ok := queryDate(c, "as_of")
	if !ok {
		return
	}

	summary, err := h.creditService.Summary(c.Request.Context(), actorFrom(c), id, asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Credit Payments
// @Tags Credits
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /credits/{credit_id}/payments [get]
func (h *CreditHandler) Payments(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}

	payments, err := h.creditService.Payments(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}

// @Summary Register Payment
// @Description Records money collected on a credit. Less than an installment is accepted.
// @Tags Credits
// @Accept json
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Param request body services.RegisterPaymentInput true "Payment"
// @Success 201 {object} services.PaymentResult
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/payments [post]
func (h *CreditHandler) RegisterPayment(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}
	var req services.RegisterPaymentInput
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		badRequest(c, "cuerpo de la solicitud inválido")
		return
	}

	result, err := h.creditService.RegisterPayment(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Register Missed Payment
// @Description Records a visit where the client did not pay
// @Tags Credits
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Success 200 {object} services.CreditSummary
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/missed_payment [post]
func (h *CreditHandler) MissedPayment(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}

	summary, err := h.creditService.RegisterMissedPayment(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Register Payment Agreement
// @Description Fixes the payoff amount of a credit
// @Tags Credits
// @Accept json
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Param request body AgreementRequest true "Agreed amount"
// @Success 200 {object} services.CreditSummary
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/agreement [post]
func (h *CreditHandler) Agreement(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}
	var req AgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount es requerido")
		return
	}

	summary, err := h.creditService.RegisterPaymentAgreement(c.Request.Context(), actorFrom(c), id, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Late Charge
// @Description Days late and late fee as of a date
// @Tags Credits
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Param as_of query string false "Date (YYYY-MM-DD), today when omitted"
// @Success 200 {object} lending.LateCharge
// @Security BearerAuth
// @Router /credits/{credit_id}/late_charge [get]
func (h *CreditHandler) LateCharge(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}
	asOf, ok := queryDate(c, "as_of")
	if !ok {
		return
	}

	charge, err := h.creditService.LateCharge(c.Request.Context(), actorFrom(c), id, asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, charge)
}

// @Summary Total Debt
// @Description Amount that settles the credit as of a date
// @Tags Credits
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Param as_of query string false "Date (YYYY-MM-DD), today when omitted"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /credits/{credit_id}/total_debt [get]
func (h *CreditHandler) TotalDebt(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}
	asOf, ok := queryDate(c, "as_of")
	if !ok {
		return
	}

	debt, err := h.creditService.TotalDebt(c.Request.Context(), actorFrom(c), id, asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credit_id": id, "total_debt": debt})
}

// @Summary Renewal Eligibility
// @Tags Credits
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Success 200 {object} services.RenewalEligibility
// @Security BearerAuth
// @Router /credits/{credit_id}/can_renew [get]
func (h *CreditHandler) CanRenew(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}

	eligibility, err := h.creditService.CanRenew(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eligibility)
}

// @Summary Renew Credit
// @Description Closes the credit and opens a successor with fresh funds
// @Tags Credits
// @Accept json
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Param request body services.RenewCreditInput true "Renewal"
// @Success 201 {object} services.SuccessionResult
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/renew [post]
func (h *CreditHandler) Renew(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}
	var req services.RenewCreditInput
	if err := BindNestedOrFlat(c, "credit", &req); err != nil {
		badRequest(c, "cuerpo de la solicitud inválido")
		return
	}

	result, err := h.creditService.Renew(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Refinance Credit
// @Description Rolls the outstanding debt into a successor credit
// @Tags Credits
// @Accept json
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Param request body RefinanceRequest true "Refinance"
// @Success 201 {object} services.SuccessionResult
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/refinance [post]
func (h *CreditHandler) Refinance(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}
	var req RefinanceRequest
	if err := BindNestedOrFlat(c, "credit", &req); err != nil {
		badRequest(c, "cuerpo de la solicitud inválido")
		return
	}

	result, err := h.creditService.Refinance(c.Request.Context(), actorFrom(c), id, req.InstallmentCount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Save Payment Schedule
// @Description Sets one due date per installment on a pending credit
// @Tags Credits
// @Accept json
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Param request body ScheduleRequest true "Due dates"
// @Success 200 {object} models.CreditResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/schedule [put]
func (h *CreditHandler) Schedule(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dates es requerido")
		return
	}
	dates, err := parseDates(req.Dates)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	credit, err := h.creditService.SavePaymentSchedule(c.Request.Context(), actorFrom(c), id, dates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credit": credit.ToResponse()})
}

// @Summary Accept Contract
// @Description Activates a scheduled credit and queues its contract document
// @Tags Credits
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Success 200 {object} models.CreditResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/accept [post]
func (h *CreditHandler) Accept(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}

	credit, err := h.creditService.AcceptContract(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credit": credit.ToResponse()})
}

// @Summary Mark Defaulted
// @Tags Credits
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Success 200 {object} models.CreditResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/default [post]
func (h *CreditHandler) Default(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}

	credit, err := h.creditService.MarkDefaulted(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credit": credit.ToResponse()})
}

// @Summary Download Contract
// @Description The generated contract PDF of an accepted credit
// @Tags Credits
// @Produce application/pdf
// @Param credit_id path int true "Credit ID"
// @Success 200 {file} file "contrato.pdf"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/contract [get]
func (h *CreditHandler) Contract(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}

	path, err := h.creditService.ContractPath(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.storage.Exists(path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "el archivo del contrato no existe", "kind": services.KindNotFound})
		return
	}
	fullPath, err := h.storage.GetFullPath(path)
	if err != nil {
		respondError(c, err)
		return
	}

	c.FileAttachment(fullPath, filepath.Base(path))
}

// @Summary Credit History
// @Description Audit trail of a credit
// @Tags Credits
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /credits/{credit_id}/history [get]
func (h *CreditHandler) History(c *gin.Context) {
	id, ok := paramID(c, "credit_id")
	if !ok {
		return
	}
	if _, err := h.creditService.Get(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.auditService.History(c.Request.Context(), "credit", id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}
