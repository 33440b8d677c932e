package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	providerID  uint = 1
	collectorID uint = 2
	otherID     uint = 3
	clientID    uint = 10
	creditID    uint = 20
)

var (
	providerActor  = services.Actor{UserID: providerID, Role: models.RoleProvider}
	collectorActor = services.Actor{UserID: collectorID, Role: models.RoleCollector, ProviderID: providerID}
	otherActor     = services.Actor{UserID: otherID, Role: models.RoleCollector, ProviderID: providerID}
)

type mockCreditRepo struct {
	repository.CreditRepository
	mockFindByID            func(ctx context.Context, id uint) (*models.Credit, error)
	mockFindByIDWithClient  func(ctx context.Context, id uint) (*models.Credit, error)
	mockFindOpenByCollector func(ctx context.Context, collectorID uint) ([]models.Credit, error)
	mockUpdate              func(ctx context.Context, credit *models.Credit) error
	mockList                func(ctx context.Context, query *repository.CreditQuery) ([]models.Credit, int64, error)
}

func (m *mockCreditRepo) FindByID(ctx context.Context, id uint) (*models.Credit, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockCreditRepo) FindByIDWithClient(ctx context.Context, id uint) (*models.Credit, error) {
	return m.mockFindByIDWithClient(ctx, id)
}

func (m *mockCreditRepo) FindOpenByCollector(ctx context.Context, collectorID uint) ([]models.Credit, error) {
	return m.mockFindOpenByCollector(ctx, collectorID)
}

func (m *mockCreditRepo) Update(ctx context.Context, credit *models.Credit) error {
	return m.mockUpdate(ctx, credit)
}

func (m *mockCreditRepo) List(ctx context.Context, query *repository.CreditQuery) ([]models.Credit, int64, error) {
	return m.mockList(ctx, query)
}

type mockPaymentRepo struct {
	repository.PaymentRepository
	mu       sync.Mutex
	payments []models.Payment
}

func (m *mockPaymentRepo) FindByCredit(ctx context.Context, creditID uint) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Payment
	for _, p := range m.payments {
		if p.CreditID == creditID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment.ID = uint(len(m.payments) + 1)
	m.payments = append(m.payments, *payment)
	return nil
}

type mockSettingsRepo struct {
	repository.SettingsRepository
	settings map[uint]models.ProviderSettings
}

func (m *mockSettingsRepo) FindByProvider(ctx context.Context, providerID uint) (*models.ProviderSettings, error) {
	s, ok := m.settings[providerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, settings *models.ProviderSettings) error {
	m.settings[settings.ProviderID] = *settings
	return nil
}

type mockAuditRepo struct {
	repository.AuditRepository
	mu      sync.Mutex
	entries []models.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) FindByEntity(ctx context.Context, entity string, entityID uint) ([]models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AuditLog
	for _, e := range m.entries {
		if e.Entity == entity && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockUserRepo struct {
	repository.UserRepository
	users    map[uint]models.User
	mockList func(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *mockUserRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return m.mockList(ctx, query)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// activeCredit is 1,000,000 + 200,000 commission in 10 weekly installments from 2026-01-10
func activeCredit() *models.Credit {
	schedule := make([]time.Time, 10)
	for i := range schedule {
		schedule[i] = day("2026-01-10").AddDate(0, 0, 7*i)
	}
	return &models.Credit{
		ID:               creditID,
		GUID:             "credit-20",
		ClientID:         clientID,
		CollectorID:      collectorID,
		ProviderID:       providerID,
		Principal:        dec("1000000"),
		CommissionAmount: dec("200000"),
		InstallmentCount: 10,
		PaymentSchedule:  schedule,
		Status:           models.CreditStatusActive,
		Version:          1,
		Client:           models.Client{ID: clientID, FullName: "Ana Gómez"},
	}
}

func lateInterestSettings() *mockSettingsRepo {
	return &mockSettingsRepo{settings: map[uint]models.ProviderSettings{
		providerID: {
			ProviderID:         providerID,
			LateInterestRate:   dec("2"),
			LateInterestActive: true,
			CommissionTiers: []models.CommissionTier{
				{MinAmount: dec("0"), MaxAmount: dec("5000000"), Percentage: dec("20")},
				{MinAmount: dec("5000000"), MaxAmount: dec("0"), Percentage: dec("15")},
			},
		},
	}}
}

// newTestRouter serves one route as the given caller
func newTestRouter(actor services.Actor, method, path string, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, path, func(c *gin.Context) {
		c.Set("userID", actor.UserID)
		c.Set("userRole", actor.Role)
		c.Set("providerID", actor.ProviderID)
		c.Next()
	}, handler)
	return r
}

func perform(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
