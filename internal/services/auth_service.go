package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/recaudoseguro/recaudo-api/internal/config"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

var (
	errBadCredentials  = newError(KindUnauthorized, "credenciales inválidas")
	errInactiveAccount = newError(KindForbidden, "cuenta inactiva o suspendida")
	errInvalidToken    = newError(KindUnauthorized, "token inválido")
	errExpiredToken    = newError(KindUnauthorized, "token expirado")
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	audit            *AuditService
	cfg              *config.Config
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, rtRepo repository.RefreshTokenRepository, audit *AuditService, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: rtRepo,
		audit:            audit,
		cfg:              cfg,
		now:              time.Now,
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token        string              `json:"token"`
	RefreshToken string              `json:"refresh_token"`
	User         models.UserResponse `json:"user"`
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, email, password, ip, userAgent string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, errBadCredentials
	}

	if !user.IsActive() {
		return nil, errInactiveAccount
	}

	if !VerifyPassword(password, user.EncryptedPassword) {
		return nil, errBadCredentials
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		actor := Actor{UserID: user.ID, Role: user.Role, IP: ip, UserAgent: userAgent}
		if err := s.audit.Record(ctx, nil, actor, models.AuditActionLogin, "user", user.ID, "inicio de sesión"); err != nil {
			logger.FromContext(ctx).Warn("failed to audit login", slog.String("error", err.Error()))
		}
	}
	return result, nil
}

// RefreshToken validates a refresh token and returns new tokens
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginResult, error) {
	rt, err := s.refreshTokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, errInvalidToken
	}

	if rt.IsExpired(s.now()) {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return nil, errExpiredToken
	}

	user, err := s.userRepo.FindByID(ctx, rt.UserID)
	if err != nil {
		return nil, notFound("usuario")
	}

	if !user.IsActive() {
		return nil, errInactiveAccount
	}

	// rotate: a refresh token is good for one use
	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout invalidates a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshTokenRepo.Delete(ctx, refreshToken)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*LoginResult, error) {
	token, err := s.generateJWT(user)
	if err != nil {
		return nil, newError(KindInternal, "error al generar token")
	}

	refreshToken, err := s.generateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, newError(KindInternal, "error al generar refresh token")
	}

	return &LoginResult{
		Token:        token,
		RefreshToken: refreshToken,
		User:         user.ToResponse(),
	}, nil
}

// generateJWT creates a new JWT token for a user. provider_id is the
// provider whose credits the user may work on.
func (s *AuthService) generateJWT(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id":     user.ID,
		"email":       user.Email,
		"role":        user.Role,
		"provider_id": user.OwningProviderID(),
		"exp":         now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":         now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// generateRefreshToken creates and stores a new refresh token
func (s *AuthService) generateRefreshToken(ctx context.Context, userID uint) (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(bytes)

	days := s.cfg.RefreshTokenDays
	if days <= 0 {
		days = 30
	}
	expiresAt := s.now().AddDate(0, 0, days)

	rt := &models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: &expiresAt,
	}

	if err := s.refreshTokenRepo.Create(ctx, rt); err != nil {
		return "", err
	}

	return token, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword compares a password with a hash
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
