package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/recaudoseguro/recaudo-api/internal/config"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	repository.UserRepository
	mockFindByEmail func(ctx context.Context, email string) (*models.User, error)
	mockFindByID    func(ctx context.Context, id uint) (*models.User, error)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.mockFindByEmail(ctx, email)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return m.mockFindByID(ctx, id)
}

var testAuthConfig = &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 2, RefreshTokenDays: 7}

func newAuthService(t *testing.T, s *memStore) *AuthService {
	t.Helper()
	hashed, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	collector := s.users[collectorID]
	collector.EncryptedPassword = hashed
	s.users[collectorID] = collector

	repos := s.repos()
	return NewAuthService(repos.User, repos.RefreshToken, NewAuditService(repos.Audit), testAuthConfig)
}

func TestAuthService_Login(t *testing.T) {
	s := seededStore()
	svc := newAuthService(t, s)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	result, err := svc.Login(context.Background(), "cobrador@example.com", "s3cret-pass", "10.0.0.7", "okhttp/4.12")
	require.NoError(t, err)
	assert.Equal(t, collectorID, result.User.ID)
	assert.Contains(t, s.tokens, result.RefreshToken)
	assert.Equal(t, now.AddDate(0, 0, 7), *s.tokens[result.RefreshToken].ExpiresAt)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(result.Token, claims, func(token *jwt.Token) (any, error) {
		return []byte(testAuthConfig.JWTSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)
	assert.Equal(t, float64(collectorID), claims["user_id"])
	assert.Equal(t, float64(providerID), claims["provider_id"])
	assert.Equal(t, models.RoleCollector, claims["role"])
	assert.Equal(t, float64(now.Add(2*time.Hour).Unix()), claims["exp"])

	require.Len(t, s.audit, 1)
	assert.Equal(t, models.AuditActionLogin, s.audit[0].Action)
	assert.Equal(t, "10.0.0.7", s.audit[0].IPAddress)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	s := seededStore()
	svc := newAuthService(t, s)

	_, err := svc.Login(context.Background(), "cobrador@example.com", "wrong", "", "")
	assert.True(t, IsKind(err, KindUnauthorized))

	_, err = svc.Login(context.Background(), "nadie@example.com", "s3cret-pass", "", "")
	assert.True(t, IsKind(err, KindUnauthorized))
	assert.Empty(t, s.tokens)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, nil, nil, testAuthConfig)

	mockRepo.mockFindByEmail = func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{
			Email:  email,
			Status: models.StatusInactive,
		}, nil
	}

	result, err := service.Login(context.Background(), "inactive@example.com", "password", "", "")
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Equal(t, "cuenta inactiva o suspendida", err.Error())
	assert.True(t, IsKind(err, KindForbidden))
}

func TestAuthService_RefreshToken_Rotates(t *testing.T) {
	s := seededStore()
	svc := newAuthService(t, s)
	ctx := context.Background()

	login, err := svc.Login(ctx, "cobrador@example.com", "s3cret-pass", "", "")
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.NotContains(t, s.tokens, login.RefreshToken)
	assert.Contains(t, s.tokens, refreshed.RefreshToken)

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.True(t, IsKind(err, KindUnauthorized), "a refresh token is good for one use")

	require.NoError(t, svc.Logout(ctx, refreshed.RefreshToken))
	assert.Empty(t, s.tokens)
}

func TestAuthService_RefreshToken_Expired(t *testing.T) {
	s := seededStore()
	svc := newAuthService(t, s)
	expired := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.tokens["old"] = models.RefreshToken{UserID: collectorID, Token: "old", ExpiresAt: &expired}
	svc.now = fixedClock(expired.Add(time.Minute))

	_, err := svc.RefreshToken(context.Background(), "old")
	assert.True(t, IsKind(err, KindUnauthorized))
	assert.Equal(t, "token expirado", err.Error())
	assert.NotContains(t, s.tokens, "old")
}

func TestAuthService_RefreshToken_InactiveUser(t *testing.T) {
	s := seededStore()
	svc := newAuthService(t, s)
	s.tokens["tok"] = models.RefreshToken{UserID: collectorID, Token: "tok"}
	collector := s.users[collectorID]
	collector.Status = models.StatusSuspended
	s.users[collectorID] = collector

	result, err := svc.RefreshToken(context.Background(), "tok")
	assert.Nil(t, result)
	assert.Equal(t, "cuenta inactiva o suspendida", err.Error())
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("correct horse", hashed))
	assert.False(t, VerifyPassword("wrong horse", hashed))
}
