package services

import (
	"context"
	"errors"
	"testing"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(s *memStore) *UserService {
	repos := s.repos()
	return NewUserService(repos.User, NewAuditService(repos.Audit))
}

func TestUserService_Create(t *testing.T) {
	t.Run("provider creates its own collector", func(t *testing.T) {
		s := seededStore()
		svc := newUserService(s)

		user, err := svc.Create(context.Background(), providerActor, CreateUserInput{
			Email:    " Nueva@Example.com ",
			Password: "password123",
			FullName: "Nueva Cobradora",
		})
		require.NoError(t, err)
		assert.Equal(t, "nueva@example.com", user.Email)
		assert.Equal(t, models.RoleCollector, user.Role)
		require.NotNil(t, user.ProviderID)
		assert.Equal(t, providerID, *user.ProviderID)
		assert.True(t, VerifyPassword("password123", s.users[user.ID].EncryptedPassword))
		assert.Equal(t, []string{models.AuditActionCreate}, s.auditActions(user.ID))
	})

	t.Run("admin creates a collector for a provider", func(t *testing.T) {
		svc := newUserService(seededStore())
		pid := providerID
		user, err := svc.Create(context.Background(), adminActor, CreateUserInput{
			Email: "c2@example.com", Password: "password123", FullName: "C2", Role: models.RoleCollector, ProviderID: &pid,
		})
		require.NoError(t, err)
		assert.Equal(t, providerID, *user.ProviderID)
	})

	pid, cid := providerID, collectorID
	tests := []struct {
		name  string
		actor Actor
		input CreateUserInput
		kind  ErrorKind
	}{
		{"short password", providerActor, CreateUserInput{Email: "a@example.com", Password: "corta"}, KindValidation},
		{"provider creates a provider", providerActor, CreateUserInput{Email: "a@example.com", Password: "password123", Role: models.RoleProvider}, KindForbidden},
		{"collector creates users", collectorActor, CreateUserInput{Email: "a@example.com", Password: "password123"}, KindForbidden},
		{"collector without provider", adminActor, CreateUserInput{Email: "a@example.com", Password: "password123", Role: models.RoleCollector}, KindValidation},
		{"provider is a collector", adminActor, CreateUserInput{Email: "a@example.com", Password: "password123", Role: models.RoleCollector, ProviderID: &cid}, KindValidation},
		{"unknown role", adminActor, CreateUserInput{Email: "a@example.com", Password: "password123", Role: "auditor", ProviderID: &pid}, KindValidation},
		{"duplicate email", providerActor, CreateUserInput{Email: "cobrador@example.com", Password: "password123"}, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seededStore()
			_, err := newUserService(s).Create(context.Background(), tt.actor, tt.input)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Len(t, s.users, 4)
		})
	}
}

func TestUserService_Get(t *testing.T) {
	svc := newUserService(seededStore())
	ctx := context.Background()

	user, err := svc.Get(ctx, providerActor, collectorID)
	require.NoError(t, err)
	assert.Equal(t, "Carlos Ruta", user.FullName)

	_, err = svc.Get(ctx, collectorActor, otherID)
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = svc.Get(ctx, Actor{UserID: 99, Role: models.RoleProvider}, collectorID)
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = svc.Get(ctx, adminActor, 999)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestUserService_ToggleStatus(t *testing.T) {
	s := seededStore()
	svc := newUserService(s)
	ctx := context.Background()

	user, err := svc.ToggleStatus(ctx, providerActor, collectorID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, user.Status)
	assert.Equal(t, models.StatusInactive, s.users[collectorID].Status)

	user, err = svc.ToggleStatus(ctx, providerActor, collectorID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, user.Status)

	_, err = svc.ToggleStatus(ctx, adminActor, adminID)
	assert.True(t, IsKind(err, KindValidation), "users cannot deactivate themselves")
}

func TestUserService_ChangePassword(t *testing.T) {
	s := seededStore()
	hashed, err := HashPassword("old-password")
	require.NoError(t, err)
	u := s.users[collectorID]
	u.EncryptedPassword = hashed
	s.users[collectorID] = u
	svc := newUserService(s)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, collectorActor, "wrong", "new-password"), ErrInvalidPassword)
	assert.True(t, IsKind(svc.ChangePassword(ctx, collectorActor, "old-password", "short"), KindValidation))

	require.NoError(t, svc.ChangePassword(ctx, collectorActor, "old-password", "new-password"))
	assert.True(t, VerifyPassword("new-password", s.users[collectorID].EncryptedPassword))
}
