package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/recaudoseguro/recaudo-api/internal/lending"
	"github.com/recaudoseguro/recaudo-api/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantError  string
	}{
		{"validation", &lending.ValidationError{Message: "monto inválido"}, http.StatusBadRequest, "validation", "monto inválido"},
		{"ineligible", &lending.IneligibleError{Message: "el crédito está cerrado (paid)"}, http.StatusUnprocessableEntity, "ineligible", "el crédito está cerrado (paid)"},
		{"concurrency", services.ErrConcurrent, http.StatusConflict, "concurrency", services.ErrConcurrent.Message},
		{"configuration", &lending.ConfigurationError{Message: "el proveedor no tiene tramos de comisión"}, http.StatusInternalServerError, "configuration", "el proveedor no tiene tramos de comisión"},
		{"not found", fmt.Errorf("lookup: %w", services.ErrNotFound), http.StatusNotFound, "not_found", services.ErrNotFound.Message},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, "forbidden", services.ErrForbidden.Message},
		{"unauthorized", services.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", services.ErrUnauthorized.Message},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal", internalErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(collectorActor, http.MethodGet, "/x", func(c *gin.Context) {
				respondError(c, tt.err)
			})

			w := perform(r, http.MethodGet, "/x", "")
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.wantKind, body["kind"])
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestParamID(t *testing.T) {
	var got uint
	r := newTestRouter(collectorActor, http.MethodGet, "/credits/:credit_id", func(c *gin.Context) {
		id, ok := paramID(c, "credit_id")
		if !ok {
			return
		}
		got = id
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/credits/42", "").Code)
	assert.Equal(t, uint(42), got)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/credits/0", "").Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/credits/-1", "").Code)
}

func TestActorFrom(t *testing.T) {
	var got services.Actor
	r := newTestRouter(collectorActor, http.MethodGet, "/x", func(c *gin.Context) {
		got = actorFrom(c)
		c.Status(http.StatusNoContent)
	})

	perform(r, http.MethodGet, "/x", "")
	assert.Equal(t, collectorActor.UserID, got.UserID)
	assert.Equal(t, collectorActor.Role, got.Role)
	assert.Equal(t, providerID, got.ProviderID)
	assert.NotEmpty(t, got.IP)
}
