package model

import (
	"github.com/google/uuid"
)

type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is a client of the business. Customers are never hard-deleted:
// delete flips status to inactive so appointment history stays intact.
type Customer struct {
	Base
	UserID  uuid.UUID      `db:"user_id" json:"user_id"`
	Name    string         `db:"name" json:"name"`
	Email   string         `db:"email" json:"email"`
	Phone   string         `db:"phone" json:"phone,omitempty"`
	Address string         `db:"address" json:"address,omitempty"`
	Notes   string         `db:"notes" json:"notes,omitempty"`
	Status  CustomerStatus `db:"status" json:"status"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type CustomerFilter struct {
	Status     CustomerStatus `form:"status"`
	SearchTerm string         `form:"search"`
}
