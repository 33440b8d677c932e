package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/internal/services"
	"github.com/recaudoseguro/recaudo-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouteHandler(t *testing.T) *RouteHandler {
	t.Helper()
	pid := providerID
	users := &mockUserRepo{users: map[uint]models.User{
		providerID:  {ID: providerID, Role: models.RoleProvider, FullName: "Capital SAS"},
		collectorID: {ID: collectorID, Role: models.RoleCollector, FullName: "Carlos Ruta", ProviderID: &pid},
		otherID:     {ID: otherID, Role: models.RoleCollector, FullName: "Otro Cobrador", ProviderID: &pid},
	}}
	credits := &mockCreditRepo{
		mockFindOpenByCollector: func(ctx context.Context, id uint) ([]models.Credit, error) {
			return nil, nil
		},
	}
	repos := &repository.Repositories{
		User:     users,
		Credit:   credits,
		Payment:  &mockPaymentRepo{},
		Settings: lateInterestSettings(),
	}
	routes := services.NewRouteService(repos, 2, time.UTC)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewRouteHandler(routes, services.NewReportService(repos, routes, store, nil, "Recaudo Seguro", time.UTC))
}

func TestRouteHandler_Show(t *testing.T) {
	h := newRouteHandler(t)

	tests := []struct {
		name       string
		actor      services.Actor
		target     string
		wantStatus int
		wantError  string
	}{
		{"own route", collectorActor, "/collectors/2/route", http.StatusOK, ""},
		{"provider sees its collector", providerActor, "/collectors/2/route?from=2026-01-20&until=2026-01-31", http.StatusOK, ""},
		{"another collector", otherActor, "/collectors/2/route", http.StatusForbidden, "no tiene permiso sobre este recurso"},
		{"not a collector", providerActor, "/collectors/1/route", http.StatusBadRequest, "el usuario indicado no es un cobrador"},
		{"unknown collector", providerActor, "/collectors/99/route", http.StatusNotFound, "cobrador no encontrado"},
		{"inverted window", collectorActor, "/collectors/2/route?from=2026-01-31&until=2026-01-20", http.StatusBadRequest, "la fecha final de la ruta es anterior a la inicial"},
		{"bad date", collectorActor, "/collectors/2/route?from=ayer", http.StatusBadRequest, "fecha inválida en from, use el formato AAAA-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.actor, http.MethodGet, "/collectors/:collector_id/route", h.Show)

			w := perform(r, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			body := decodeBody(t, w)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, float64(0), body["total_entries"])
		})
	}
}

func TestRouteHandler_Export(t *testing.T) {
	h := newRouteHandler(t)
	r := newTestRouter(collectorActor, http.MethodGet, "/collectors/:collector_id/route/export", h.Export)

	w := perform(r, http.MethodGet, "/collectors/2/route/export?format=csv", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", decodeBody(t, w)["kind"])

	w = perform(r, http.MethodGet, "/collectors/2/route/export", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment; filename=ruta_2_"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"), "xlsx files are zip archives")

	w = perform(r, http.MethodGet, "/collectors/2/route/export?format=pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasSuffix(w.Header().Get("Content-Disposition"), ".pdf"))
}
