package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recaudoseguro/recaudo-api/internal/lending"
	"github.com/recaudoseguro/recaudo-api/internal/services"
)

type RouteHandler struct {
	routeService  *services.RouteService
	reportService *services.ReportService
}

func NewRouteHandler(routeService *services.RouteService, reportService *services.ReportService) *RouteHandler {
	return &RouteHandler{routeService: routeService, reportService: reportService}
}

var exportContentTypes = map[string]string{
	services.ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	services.ExportFormatPDF:  "application/pdf",
}

func routeWindow(c *gin.Context) (lending.RouteWindow, bool) {
	from, ok := queryDate(c, "from")
	if !ok {
		return lending.RouteWindow{}, false
	}
	until, ok := queryDate(c, "until")
	if !ok {
		return lending.RouteWindow{}, false
	}
	return lending.RouteWindow{From: from, Until: until}, true
}

// @Summary Payment Route
// @Description A collector's visits grouped by due date. Overdue credits come first.
// @Tags Routes
// @Produce json
// @Param collector_id path int true "Collector ID"
// @Param from query string false "Window start (YYYY-MM-DD), today when omitted"
// @Param until query string false "Window end (YYYY-MM-DD), from when omitted"
// @Success 200 {object} lending.Route
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /collectors/{collector_id}/route [get]
func (h *RouteHandler) Show(c *gin.Context) {
	collectorID, ok := paramID(c, "collector_id")
	if !ok {
		return
	}
	window, ok := routeWindow(c)
	if !ok {
		return
	}

	route, err := h.routeService.BuildPaymentRoute(c.Request.Context(), actorFrom(c), collectorID, window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// @Summary Export Payment Route
// @Description The collector's route as a spreadsheet or printable PDF
// @Tags Routes
// @Produce application/octet-stream
// @Param collector_id path int true "Collector ID"
// @Param format query string false "xlsx or pdf" default(xlsx)
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param until query string false "Window end (YYYY-MM-DD)"
// @Success 200 {file} file "ruta"
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /collectors/{collector_id}/route/export [get]
func (h *RouteHandler) Export(c *gin.Context) {
	collectorID, ok := paramID(c, "collector_id")
	if !ok {
		return
	}
	window, ok := routeWindow(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", services.ExportFormatXLSX)

	data, filename, err := h.reportService.ExportRoute(c.Request.Context(), actorFrom(c), collectorID, window, format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, exportContentTypes[format], data)
}
