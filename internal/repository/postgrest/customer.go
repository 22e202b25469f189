package postgrest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

type customerRepository struct {
	client *Client
}

func NewCustomerRepository(client *Client) repository.CustomerRepository {
	return &customerRepository{client: client}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if customer.Status == "" {
		customer.Status = model.CustomerStatusActive
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	return r.client.From("customers").Insert(ctx, customer, nil)
}

func (r *customerRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := r.client.From("customers").
		Eq("user_id", userID).
		Eq("id", id).
		Single().
		Get(ctx, &customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, userID uuid.UUID, email string) (*model.Customer, error) {
	var customer model.Customer
	err := r.client.From("customers").
		Eq("user_id", userID).
		Eq("email", email).
		Single().
		Get(ctx, &customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	customer.UpdatedAt = time.Now()

	payload := map[string]interface{}{
		"name":       customer.Name,
		"email":      customer.Email,
		"phone":      customer.Phone,
		"address":    customer.Address,
		"notes":      customer.Notes,
		"updated_at": rfc3339(customer.UpdatedAt),
	}

	return r.client.From("customers").
		Eq("user_id", customer.UserID).
		Eq("id", customer.ID).
		Update(ctx, payload, nil)
}

func (r *customerRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.CustomerStatus) error {
	payload := map[string]interface{}{
		"status":     status,
		"updated_at": rfc3339(time.Now()),
	}

	return r.client.From("customers").
		Eq("user_id", userID).
		Eq("id", id).
		Update(ctx, payload, nil)
}

func (r *customerRepository) List(ctx context.Context, userID uuid.UUID, filter *model.CustomerFilter) ([]*model.Customer, error) {
	query := r.client.From("customers").
		Eq("user_id", userID).
		Order("name", true)

	if filter != nil {
		if filter.Status != "" {
			query = query.Eq("status", filter.Status)
		}
		if filter.SearchTerm != "" {
			term := filter.SearchTerm
			query = query.Or(fmt.Sprintf("(name.ilike.*%s*,email.ilike.*%s*)", term, term))
		}
	}

	var customers []*model.Customer
	if err := query.Get(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) CountByStatus(ctx context.Context, userID uuid.UUID, status model.CustomerStatus) (int, error) {
	return r.client.From("customers").
		Eq("user_id", userID).
		Eq("status", status).
		Count(ctx)
}
