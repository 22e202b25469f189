package model

import (
	"github.com/google/uuid"
)

// Service is a catalog entry the business offers.
type Service struct {
	Base
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Duration    int       `db:"duration" json:"duration"` // in minutes
	Price       float64   `db:"price" json:"price"`
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Duration    int     `json:"duration" binding:"required,min=5,max=480"`
	Price       float64 `json:"price" binding:"min=0"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Duration    *int     `json:"duration" binding:"omitempty,min=5,max=480"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
}
