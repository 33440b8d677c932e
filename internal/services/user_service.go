package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// UserService manages providers, collectors and administrators
type UserService struct {
	repo  repository.UserRepository
	audit *AuditService
}

func NewUserService(repo repository.UserRepository, audit *AuditService) *UserService {
	return &UserService{repo: repo, audit: audit}
}

// CreateUserInput is a new account. Providers may only create collectors,
// which are always attached to them.
type CreateUserInput struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	FullName   string `json:"full_name" binding:"required"`
	Phone      string `json:"phone"`
	Identity   string `json:"identity"`
	Role       string `json:"role"`
	ProviderID *uint  `json:"provider_id"`
}

func (s *UserService) Get(ctx context.Context, actor Actor, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("usuario")
	}
	if err != nil {
		return nil, err
	}
	if !s.canSee(actor, user) {
		return nil, ErrForbidden
	}
	return user, nil
}

func (s *UserService) canSee(actor Actor, user *models.User) bool {
	switch {
	case actor.isPrivileged(), actor.UserID == user.ID:
		return true
	case actor.Role == models.RoleProvider:
		return user.ProviderID != nil && *user.ProviderID == actor.UserID
	}
	return false
}

// List returns the accounts visible to the actor: everything for admins, a
// provider's own collectors otherwise.
func (s *UserService) List(ctx context.Context, actor Actor, query *repository.ListQuery) ([]models.User, int64, error) {
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleProvider:
		query.Filters["provider_id"] = strconv.FormatUint(uint64(actor.UserID), 10)
	default:
		return nil, 0, ErrForbidden
	}
	return s.repo.List(ctx, query)
}

func (s *UserService) Create(ctx context.Context, actor Actor, input CreateUserInput) (*models.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, newError(KindValidation, fmt.Sprintf("la contraseña debe tener al menos %d caracteres", minPasswordLength))
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		FullName: strings.TrimSpace(input.FullName),
		Phone:    input.Phone,
		Identity: input.Identity,
		Role:     input.Role,
	}
	if user.Role == "" {
		user.Role = models.RoleCollector
	}

	switch {
	case actor.Role == models.RoleProvider:
		if user.Role != models.RoleCollector {
			return nil, ErrForbidden
		}
		providerID := actor.UserID
		user.ProviderID = &providerID
	case actor.Role == models.RoleAdmin:
		switch user.Role {
		case models.RoleCollector:
			if input.ProviderID == nil {
				return nil, newError(KindValidation, "un cobrador debe pertenecer a un proveedor")
			}
			provider, err := s.repo.FindByID(ctx, *input.ProviderID)
			if err != nil || !provider.IsProvider() {
				return nil, newError(KindValidation, "el proveedor indicado no existe")
			}
			user.ProviderID = input.ProviderID
		case models.RoleProvider, models.RoleAdmin:
		default:
			return nil, newError(KindValidation, fmt.Sprintf("rol inválido: %s", user.Role))
		}
	default:
		return nil, ErrForbidden
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.EncryptedPassword = hashed
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, wrapErr(err)
	}

	details := fmt.Sprintf("Usuario creado: %s (%s) - Rol: %s", user.FullName, user.Email, user.Role)
	if err := s.audit.Record(ctx, nil, actor, models.AuditActionCreate, "user", user.ID, details); err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleStatus activates or deactivates an account
func (s *UserService) ToggleStatus(ctx context.Context, actor Actor, id uint) (*models.User, error) {
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if user.ID == actor.UserID {
		return nil, newError(KindValidation, "no puede desactivar su propia cuenta")
	}
	if user.Status == models.StatusActive {
		user.Status = models.StatusInactive
	} else {
		user.Status = models.StatusActive
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, nil, actor, models.AuditActionUpdate, "user", id, fmt.Sprintf("Estado cambiado a %s", user.Status)); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the actor's own password
func (s *UserService) ChangePassword(ctx context.Context, actor Actor, currentPassword, newPassword string) error {
	user, err := s.Get(ctx, actor, actor.UserID)
	if err != nil {
		return err
	}
	if !VerifyPassword(currentPassword, user.EncryptedPassword) {
		return ErrInvalidPassword
	}
	if len(newPassword) < minPasswordLength {
		return newError(KindValidation, fmt.Sprintf("la contraseña debe tener al menos %d caracteres", minPasswordLength))
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashed
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	return s.audit.Record(ctx, nil, actor, models.AuditActionUpdate, "user", user.ID, "Contraseña actualizada por el usuario")
}
