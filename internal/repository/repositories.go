package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrStaleVersion is returned when an optimistic update found the row changed
var ErrStaleVersion = errors.New("el registro fue modificado por otra operación")

// DuplicateError reports a unique constraint violation on Field
type DuplicateError struct {
	Field   string
	Message string
}

func (e *DuplicateError) Error() string { return e.Message }

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Client       ClientRepository
	Credit       CreditRepository
	Payment      PaymentRepository
	Settings     SettingsRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
	Audit        AuditRepository

	db *gorm.DB
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Client:       NewClientRepository(db),
		Credit:       NewCreditRepository(db),
		Payment:      NewPaymentRepository(db),
		Settings:     NewSettingsRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Audit:        NewAuditRepository(db),
		db:           db,
	}
}

// Transaction runs fn with every repository bound to one database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
// Repositories assembled by hand without a database run fn directly.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
