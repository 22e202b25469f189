package fallback

import (
	"context"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/internal/repository/local"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type customerRepository struct {
	guard
	primary repository.CustomerRepository
	replica *local.CustomerRepository
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	done := r.instrument("customer", "create")
	err := r.primary.Create(ctx, customer)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(customer)
	return nil
}

func (r *customerRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Customer, error) {
	done := r.instrument("customer", "get")
	customer, err := r.primary.Get(ctx, userID, id)
	done(err)
	if err == nil {
		r.replica.Mirror(customer)
		return customer, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("customer", "get", err)
	return r.replica.Get(ctx, userID, id)
}

func (r *customerRepository) GetByEmail(ctx context.Context, userID uuid.UUID, email string) (*model.Customer, error) {
	done := r.instrument("customer", "get_by_email")
	customer, err := r.primary.GetByEmail(ctx, userID, email)
	done(err)
	if err == nil {
		r.replica.Mirror(customer)
		return customer, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("customer", "get_by_email", err)
	return r.replica.GetByEmail(ctx, userID, email)
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	done := r.instrument("customer", "update")
	err := r.primary.Update(ctx, customer)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(customer)
	return nil
}

func (r *customerRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.CustomerStatus) error {
	done := r.instrument("customer", "update_status")
	err := r.primary.UpdateStatus(ctx, userID, id, status)
	done(err)
	if err != nil {
		return err
	}
	// Replica may not hold the row yet; a miss here is not an error.
	_ = r.replica.UpdateStatus(ctx, userID, id, status)
	return nil
}

func (r *customerRepository) List(ctx context.Context, userID uuid.UUID, filter *model.CustomerFilter) ([]*model.Customer, error) {
	done := r.instrument("customer", "list")
	customers, err := r.primary.List(ctx, userID, filter)
	done(err)
	if err == nil {
		for _, customer := range customers {
			r.replica.Mirror(customer)
		}
		return customers, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("customer", "list", err)
	return r.replica.List(ctx, userID, filter)
}

func (r *customerRepository) CountByStatus(ctx context.Context, userID uuid.UUID, status model.CustomerStatus) (int, error) {
	done := r.instrument("customer", "count_by_status")
	count, err := r.primary.CountByStatus(ctx, userID, status)
	done(err)
	if err == nil {
		return count, nil
	}
	if !apperrors.IsUnavailable(err) {
		return 0, err
	}
	r.serve("customer", "count_by_status", err)
	return r.replica.CountByStatus(ctx, userID, status)
}
