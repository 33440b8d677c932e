package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/recaudoseguro/recaudo-api/internal/middleware"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/internal/services"
	"github.com/recaudoseguro/recaudo-api/pkg/logger"
)

var statusByKind = map[services.ErrorKind]int{
	services.KindValidation:    http.StatusBadRequest,
	services.KindIneligible:    http.StatusUnprocessableEntity,
	services.KindConcurrency:   http.StatusConflict,
	services.KindConfiguration: http.StatusInternalServerError,
	services.KindNotFound:      http.StatusNotFound,
	services.KindForbidden:     http.StatusForbidden,
	services.KindUnauthorized:  http.StatusUnauthorized,
	services.KindInternal:      http.StatusInternalServerError,
}

const internalErrorMessage = "error interno del servidor"

// respondError writes err as {"error": message, "kind": kind}. Internal errors
// are logged and reported but never shown to the caller.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	var appErr *services.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	if kind == services.KindInternal {
		logger.FromContext(c.Request.Context()).Error("request failed",
			slog.String("path", c.FullPath()), slog.Any("error", err))
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = internalErrorMessage
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message, "kind": kind})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "kind": services.KindValidation})
}

// actorFrom builds the caller identity set by the auth middleware
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:     middleware.GetUserID(c),
		Role:       middleware.GetUserRole(c),
		ProviderID: middleware.GetProviderID(c),
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
}

// paramID parses a numeric path parameter, answering 400 when it is not one
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "identificador inválido: "+name)
		return 0, false
	}
	return uint(id), true
}

// queryDate parses an optional YYYY-MM-DD query parameter. Absent means zero.
func queryDate(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		badRequest(c, "fecha inválida en "+name+", use el formato AAAA-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

func listQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "20")); err == nil && perPage > 0 && perPage <= 100 {
		query.PerPage = perPage
	}
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.DefaultQuery("sort_dir", "asc")
	return query
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
	}
}
