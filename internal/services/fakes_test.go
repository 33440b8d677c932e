package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memStore is an in-memory database shared by the fake repositories below.
// Values are copied in and out so services cannot alias stored rows.
type memStore struct {
	mu            sync.Mutex
	nextID        uint
	users         map[uint]models.User
	clients       map[uint]models.Client
	credits       map[uint]models.Credit
	payments      []models.Payment
	settings      map[uint]models.ProviderSettings
	audit         []models.AuditLog
	notifications []models.Notification
	tokens        map[string]models.RefreshToken
}

func newMemStore() *memStore {
	return &memStore{
		nextID:   1000,
		users:    map[uint]models.User{},
		clients:  map[uint]models.Client{},
		credits:  map[uint]models.Credit{},
		settings: map[uint]models.ProviderSettings{},
		tokens:   map[string]models.RefreshToken{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) credit(id uint) models.Credit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credits[id]
}

func (s *memStore) paymentsOf(creditID uint) []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payment
	for _, p := range s.payments {
		if p.CreditID == creditID {
			out = append(out, p)
		}
	}
	return out
}

func (s *memStore) auditActions(entityID uint) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, a := range s.audit {
		if a.EntityID == entityID {
			out = append(out, a.Action)
		}
	}
	return out
}

func (s *memStore) notificationsOf(userID uint) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (s *memStore) repos() *repository.Repositories {
	return &repository.Repositories{
		User:         &fakeUserRepo{s: s},
		Client:       &fakeClientRepo{s: s},
		Credit:       &fakeCreditRepo{s: s},
		Payment:      &fakePaymentRepo{s: s},
		Settings:     &fakeSettingsRepo{s: s},
		Notification: &fakeNotificationRepo{s: s},
		RefreshToken: &fakeRefreshTokenRepo{s: s},
		Audit:        &fakeAuditRepo{s: s},
	}
}

type fakeCreditRepo struct {
	repository.CreditRepository
	s          *memStore
	mockUpdate func(ctx context.Context, credit *models.Credit) error
}

func (r *fakeCreditRepo) FindByID(ctx context.Context, id uint) (*models.Credit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.credits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *fakeCreditRepo) FindByIDWithClient(ctx context.Context, id uint) (*models.Credit, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	c.Client = r.s.clients[c.ClientID]
	r.s.mu.Unlock()
	return c, nil
}

func (r *fakeCreditRepo) find(match func(c models.Credit) bool) []models.Credit {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Credit
	for _, c := range r.s.credits {
		if match(c) {
			c.Client = r.s.clients[c.ClientID]
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeCreditRepo) FindOpenByCollector(ctx context.Context, collectorID uint) ([]models.Credit, error) {
	return r.find(func(c models.Credit) bool { return c.CollectorID == collectorID && c.IsOpen() }), nil
}

func (r *fakeCreditRepo) FindOpen(ctx context.Context) ([]models.Credit, error) {
	return r.find(func(c models.Credit) bool { return c.IsOpen() }), nil
}

func (r *fakeCreditRepo) FindByClient(ctx context.Context, clientID uint) ([]models.Credit, error) {
	return r.find(func(c models.Credit) bool { return c.ClientID == clientID }), nil
}

func (r *fakeCreditRepo) List(ctx context.Context, query *repository.CreditQuery) ([]models.Credit, int64, error) {
	out := r.find(func(c models.Credit) bool {
		return (query.CollectorID == 0 || c.CollectorID == query.CollectorID) &&
			(query.ProviderID == 0 || c.ProviderID == query.ProviderID)
	})
	return out, int64(len(out)), nil
}

func (r *fakeCreditRepo) Create(ctx context.Context, credit *models.Credit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	credit.ID = r.s.id()
	if credit.Version == 0 {
		credit.Version = 1
	}
	stored := *credit
	stored.Client = models.Client{}
	r.s.credits[credit.ID] = stored
	return nil
}

func (r *fakeCreditRepo) Update(ctx context.Context, credit *models.Credit) error {
	if r.mockUpdate != nil {
		if err := r.mockUpdate(ctx, credit); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.credits[credit.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if current.Version != credit.Version {
		return repository.ErrStaleVersion
	}
	credit.Version++
	stored := *credit
	stored.Client = models.Client{}
	r.s.credits[credit.ID] = stored
	return nil
}

func (r *fakeCreditRepo) SetContractPath(ctx context.Context, id uint, path string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.credits[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ContractDocumentPath = &path
	r.s.credits[id] = c
	return nil
}

type fakePaymentRepo struct {
	repository.PaymentRepository
	s                *memStore
	mockFindByCredit func(ctx context.Context, creditID uint) ([]models.Payment, error)
}

func (r *fakePaymentRepo) FindByCredit(ctx context.Context, creditID uint) ([]models.Payment, error) {
	if r.mockFindByCredit != nil {
		return r.mockFindByCredit(ctx, creditID)
	}
	return r.s.paymentsOf(creditID), nil
}

func (r *fakePaymentRepo) FindByCredits(ctx context.Context, creditIDs []uint) (map[uint][]models.Payment, error) {
	out := make(map[uint][]models.Payment, len(creditIDs))
	for _, id := range creditIDs {
		out[id] = r.s.paymentsOf(id)
	}
	return out, nil
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	payment.ID = r.s.id()
	payment.CreatedAt = time.Now()
	r.s.payments = append(r.s.payments, *payment)
	return nil
}

type fakeSettingsRepo struct {
	repository.SettingsRepository
	s *memStore
}

func (r *fakeSettingsRepo) FindByProvider(ctx context.Context, providerID uint) (*models.ProviderSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.settings[providerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &st, nil
}

func (r *fakeSettingsRepo) FindAll(ctx context.Context) ([]models.ProviderSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ProviderSettings
	for _, st := range r.s.settings {
		out = append(out, st)
	}
	return out, nil
}

func (r *fakeSettingsRepo) Upsert(ctx context.Context, settings *models.ProviderSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings[settings.ProviderID] = *settings
	return nil
}

type fakeClientRepo struct {
	repository.ClientRepository
	s *memStore
}

func (r *fakeClientRepo) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *fakeClientRepo) FindByCollector(ctx context.Context, collectorID uint) ([]models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Client
	for _, c := range r.s.clients {
		if c.CollectorID == collectorID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *fakeClientRepo) Create(ctx context.Context, client *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	client.ID = r.s.id()
	r.s.clients[client.ID] = *client
	return nil
}

func (r *fakeClientRepo) UpdateReputation(ctx context.Context, id uint, score int, scoredAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.s.clients[id]
	c.ReputationScore = score
	c.ScoredAt = &scoredAt
	r.s.clients[id] = c
	return nil
}

type fakeUserRepo struct {
	repository.UserRepository
	s *memStore
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return &repository.DuplicateError{Field: "email", Message: "ya existe un usuario con este correo electrónico"}
		}
	}
	user.ID = r.s.id()
	r.s.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindAdmins(ctx context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, u := range r.s.users {
		if u.IsAdmin() {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	repository.AuditRepository
	s *memStore
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.id()
	r.s.audit = append(r.s.audit, *entry)
	return nil
}

type fakeNotificationRepo struct {
	repository.NotificationRepository
	s *memStore
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.id()
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

type fakeRefreshTokenRepo struct {
	repository.RefreshTokenRepository
	s *memStore
}

func (r *fakeRefreshTokenRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rt, nil
}

func (r *fakeRefreshTokenRepo) Create(ctx context.Context, rt *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[rt.Token] = *rt
	return nil
}

func (r *fakeRefreshTokenRepo) Delete(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, token)
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for token, rt := range r.s.tokens {
		if rt.IsExpired(now) {
			delete(r.s.tokens, token)
			removed++
		}
	}
	return removed, nil
}

// Fixture ids
const (
	providerID  uint = 1
	collectorID uint = 2
	otherID     uint = 3
	adminID     uint = 4
	clientID    uint = 10
)

var (
	providerActor  = Actor{UserID: providerID, Role: models.RoleProvider, ProviderID: providerID}
	collectorActor = Actor{UserID: collectorID, Role: models.RoleCollector, ProviderID: providerID}
	otherActor     = Actor{UserID: otherID, Role: models.RoleCollector, ProviderID: providerID}
	adminActor     = Actor{UserID: adminID, Role: models.RoleAdmin}
)

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func weekly(first time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = first.AddDate(0, 0, 7*i)
	}
	return out
}

// seededStore has one provider with a collector, another collector, an admin,
// one client and provider settings with 2% daily late interest.
func seededStore() *memStore {
	s := newMemStore()
	pid := providerID
	s.users[providerID] = models.User{ID: providerID, Email: "proveedor@example.com", Role: models.RoleProvider, Status: models.StatusActive, FullName: "Capital SAS"}
	s.users[collectorID] = models.User{ID: collectorID, Email: "cobrador@example.com", Role: models.RoleCollector, Status: models.StatusActive, FullName: "Carlos Ruta", ProviderID: &pid}
	s.users[otherID] = models.User{ID: otherID, Email: "otro@example.com", Role: models.RoleCollector, Status: models.StatusActive, FullName: "Otro Cobrador", ProviderID: &pid}
	s.users[adminID] = models.User{ID: adminID, Email: "admin@example.com", Role: models.RoleAdmin, Status: models.StatusActive}
	s.clients[clientID] = models.Client{ID: clientID, CollectorID: collectorID, ProviderID: providerID, FullName: "Ana Gómez", Phone: "3001234567", Address: "Calle 1 # 2-3"}
	s.settings[providerID] = models.ProviderSettings{
		ProviderID: providerID,
		CommissionTiers: []models.CommissionTier{
			{MinAmount: dec("0"), MaxAmount: dec("5000000"), Percentage: dec("20")},
			{MinAmount: dec("5000000"), MaxAmount: dec("0"), Percentage: dec("15")},
		},
		LateInterestRate:   dec("2"),
		LateInterestActive: true,
		DefaultAfterDays:   30,
	}
	return s
}

// seedCredit stores an active credit of 1,000,000 + 200,000 commission in 10
// weekly installments from 2026-01-10.
func seedCredit(s *memStore, mutate ...func(c *models.Credit)) models.Credit {
	c := models.Credit{
		ClientID:         clientID,
		CollectorID:      collectorID,
		ProviderID:       providerID,
		Principal:        dec("1000000"),
		CommissionAmount: dec("200000"),
		InstallmentCount: 10,
		PaymentSchedule:  weekly(day("2026-01-10"), 10),
		Status:           models.CreditStatusActive,
		Version:          1,
		CreatedAt:        day("2026-01-03"),
	}
	for _, m := range mutate {
		m(&c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	c.GUID = fmt.Sprintf("credit-%d", c.ID)
	s.credits[c.ID] = c
	return c
}

func seedPayment(s *memStore, creditID uint, date, amount, paymentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, models.Payment{
		ID:       s.id(),
		CreditID: creditID,
		Date:     day(date),
		Amount:   dec(amount),
		Type:     paymentType,
	})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
