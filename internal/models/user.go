package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a provider, collector or administrator
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null" json:"-"`
	Role              string     `gorm:"default:collector;not null;index" json:"role"`
	FullName          string     `json:"full_name"`
	Phone             string     `json:"phone"`
	Status            string     `gorm:"default:active" json:"status"`
	Identity          string     `gorm:"uniqueIndex" json:"identity"`
	ProviderID        *uint      `gorm:"index" json:"provider_id"`
	DiscardedAt       *time.Time `gorm:"index" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Associations
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleCollector
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsProvider returns true if user lends capital
func (u *User) IsProvider() bool {
	return u.Role == RoleProvider
}

// IsCollector returns true if user works a payment route
func (u *User) IsCollector() bool {
	return u.Role == RoleCollector
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive && u.DiscardedAt == nil
}

// OwningProviderID returns the provider whose capital the user manages
func (u *User) OwningProviderID() uint {
	if u.IsProvider() {
		return u.ID
	}
	if u.ProviderID != nil {
		return *u.ProviderID
	}
	return 0
}

// Role constants
const (
	RoleAdmin     = "admin"
	RoleProvider  = "provider"
	RoleCollector = "collector"
)

// Status constants
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	Identity   string    `json:"identity"`
	ProviderID *uint     `json:"provider_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Phone:      u.Phone,
		Role:       u.Role,
		Status:     u.Status,
		Identity:   u.Identity,
		ProviderID: u.ProviderID,
		CreatedAt:  u.CreatedAt,
	}
}
