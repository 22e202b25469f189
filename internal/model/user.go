package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a business owner account
type User struct {
	Base
	Email        string `json:"email" db:"email"`
	Password     string `json:"password,omitempty" db:"-"`
	PasswordHash string `json:"-" db:"password_hash"`
}

// Profile carries the business details shown on reports and reminders.
type Profile struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	BusinessName string    `json:"business_name" db:"business_name"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest represents owner signup parameters
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Name         string `json:"name" binding:"required"`
	BusinessName string `json:"business_name"`
	Phone        string `json:"phone"`
}

// LoginRequest represents login parameters
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token presented for rotation
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest represents profile update parameters
type UpdateProfileRequest struct {
	Name         *string `json:"name"`
	BusinessName *string `json:"business_name"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
}
