package fallback

import (
	"context"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/internal/repository/local"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type serviceRepository struct {
	guard
	primary repository.ServiceRepository
	replica *local.ServiceRepository
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	done := r.instrument("service", "create")
	err := r.primary.Create(ctx, service)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(service)
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Service, error) {
	done := r.instrument("service", "get")
	service, err := r.primary.Get(ctx, userID, id)
	done(err)
	if err == nil {
		r.replica.Mirror(service)
		return service, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("service", "get", err)
	return r.replica.Get(ctx, userID, id)
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	done := r.instrument("service", "update")
	err := r.primary.Update(ctx, service)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(service)
	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	done := r.instrument("service", "delete")
	err := r.primary.Delete(ctx, userID, id)
	done(err)
	if err != nil {
		return err
	}
	_ = r.replica.Delete(ctx, userID, id)
	return nil
}

func (r *serviceRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.Service, error) {
	done := r.instrument("service", "list")
	services, err := r.primary.List(ctx, userID)
	done(err)
	if err == nil {
		for _, service := range services {
			r.replica.Mirror(service)
		}
		return services, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("service", "list", err)
	return r.replica.List(ctx, userID)
}

func (r *serviceRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	done := r.instrument("service", "count")
	count, err := r.primary.Count(ctx, userID)
	done(err)
	if err == nil {
		return count, nil
	}
	if !apperrors.IsUnavailable(err) {
		return 0, err
	}
	r.serve("service", "count", err)
	return r.replica.Count(ctx, userID)
}
