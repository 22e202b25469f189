package local

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type CustomerRepository struct {
	store *Store
}

func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	if _, err := r.GetByEmail(ctx, customer.UserID, customer.Email); err == nil {
		return apperrors.NewConflict("customer", nil)
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if customer.Status == "" {
		customer.Status = model.CustomerStatusActive
	}
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return r.store.customers.put(customer.ID.String(), *customer)
}

func (r *CustomerRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Customer, error) {
	customer, ok := r.store.customers.get(id.String())
	if !ok || customer.UserID != userID {
		return nil, apperrors.NewNotFound("customer", nil)
	}
	return &customer, nil
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, userID uuid.UUID, email string) (*model.Customer, error) {
	for _, customer := range r.store.customers.list() {
		if customer.UserID == userID && strings.EqualFold(customer.Email, email) {
			return &customer, nil
		}
	}
	return nil, apperrors.NewNotFound("customer", nil)
}

func (r *CustomerRepository) Update(ctx context.Context, customer *model.Customer) error {
	existing, ok := r.store.customers.get(customer.ID.String())
	if !ok || existing.UserID != customer.UserID {
		return apperrors.NewNotFound("customer", nil)
	}
	// Email changes must not collide with another customer of the same owner.
	if !strings.EqualFold(existing.Email, customer.Email) {
		if other, err := r.GetByEmail(ctx, customer.UserID, customer.Email); err == nil && other.ID != customer.ID {
			return apperrors.NewConflict("customer", nil)
		}
	}
	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = time.Now()
	return r.store.customers.put(customer.ID.String(), *customer)
}

func (r *CustomerRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.CustomerStatus) error {
	customer, ok := r.store.customers.get(id.String())
	if !ok || customer.UserID != userID {
		return apperrors.NewNotFound("customer", nil)
	}
	customer.Status = status
	customer.UpdatedAt = time.Now()
	return r.store.customers.put(customer.ID.String(), customer)
}

func (r *CustomerRepository) List(ctx context.Context, userID uuid.UUID, filter *model.CustomerFilter) ([]*model.Customer, error) {
	var out []*model.Customer
	for _, customer := range r.store.customers.list() {
		if customer.UserID != userID {
			continue
		}
		if filter != nil {
			if filter.Status != "" && customer.Status != filter.Status {
				continue
			}
			if filter.SearchTerm != "" && !matchesSearch(&customer, filter.SearchTerm) {
				continue
			}
		}
		c := customer
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *CustomerRepository) CountByStatus(ctx context.Context, userID uuid.UUID, status model.CustomerStatus) (int, error) {
	count := 0
	for _, customer := range r.store.customers.list() {
		if customer.UserID == userID && customer.Status == status {
			count++
		}
	}
	return count, nil
}

// Mirror stores a copy fetched from the primary tier.
func (r *CustomerRepository) Mirror(customer *model.Customer) {
	_ = r.store.customers.put(customer.ID.String(), *customer)
}

func matchesSearch(customer *model.Customer, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(customer.Name), term) ||
		strings.Contains(strings.ToLower(customer.Email), term)
}
