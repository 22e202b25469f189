package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

type customerRepository struct {
	db *DB
}

func NewCustomerRepository(db *DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	query := `
		INSERT INTO customers (
			id, user_id, name, email, phone, address, notes, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if customer.Status == "" {
		customer.Status = model.CustomerStatusActive
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.UserID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.Notes,
		customer.Status,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		return classify("customer", err)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Customer, error) {
	query := `
		SELECT id, user_id, name, email, phone, address, notes, status,
			   created_at, updated_at
		FROM customers
		WHERE user_id = $1 AND id = $2
	`

	var customer model.Customer
	if err := r.db.GetContext(ctx, &customer, query, userID, id); err != nil {
		return nil, classify("customer", err)
	}
	return &customer, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, userID uuid.UUID, email string) (*model.Customer, error) {
	query := `
		SELECT id, user_id, name, email, phone, address, notes, status,
			   created_at, updated_at
		FROM customers
		WHERE user_id = $1 AND lower(email) = lower($2)
	`

	var customer model.Customer
	if err := r.db.GetContext(ctx, &customer, query, userID, email); err != nil {
		return nil, classify("customer", err)
	}
	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, address = $4, notes = $5, updated_at = $6
		WHERE user_id = $7 AND id = $8
	`
	customer.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.Notes,
		customer.UpdatedAt,
		customer.UserID,
		customer.ID,
	)
	if err != nil {
		return classify("customer", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return classify("customer", sql.ErrNoRows)
	}
	return nil
}

// UpdateStatus covers both the soft delete (inactive) and the restore
// (active). The row itself is never removed.
func (r *customerRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.CustomerStatus) error {
	query := `UPDATE customers SET status = $1, updated_at = $2 WHERE user_id = $3 AND id = $4`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), userID, id)
	if err != nil {
		return classify("customer", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return classify("customer", sql.ErrNoRows)
	}
	return nil
}

func (r *customerRepository) List(ctx context.Context, userID uuid.UUID, filter *model.CustomerFilter) ([]*model.Customer, error) {
	query := `
		SELECT id, user_id, name, email, phone, address, notes, status,
			   created_at, updated_at
		FROM customers
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	argCount := 2

	if filter != nil {
		if filter.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filter.Status)
			argCount++
		}
		if filter.SearchTerm != "" {
			query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argCount, argCount)
			args = append(args, "%"+filter.SearchTerm+"%")
			argCount++
		}
	}

	query += " ORDER BY name ASC"

	var customers []*model.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, classify("customer", err)
	}
	return customers, nil
}

func (r *customerRepository) CountByStatus(ctx context.Context, userID uuid.UUID, status model.CustomerStatus) (int, error) {
	query := `SELECT COUNT(*) FROM customers WHERE user_id = $1 AND status = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, status); err != nil {
		return 0, classify("customer", err)
	}
	return count, nil
}
