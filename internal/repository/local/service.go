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

type ServiceRepository struct {
	store *Store
}

func NewServiceRepository(store *Store) *ServiceRepository {
	return &ServiceRepository{store: store}
}

func (r *ServiceRepository) Create(ctx context.Context, service *model.Service) error {
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	now := time.Now()
	service.CreatedAt = now
	service.UpdatedAt = now
	return r.store.services.put(service.ID.String(), *service)
}

func (r *ServiceRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Service, error) {
	service, ok := r.store.services.get(id.String())
	if !ok || service.UserID != userID {
		return nil, apperrors.NewNotFound("service", nil)
	}
	return &service, nil
}

func (r *ServiceRepository) Update(ctx context.Context, service *model.Service) error {
	existing, ok := r.store.services.get(service.ID.String())
	if !ok || existing.UserID != service.UserID {
		return apperrors.NewNotFound("service", nil)
	}
	service.CreatedAt = existing.CreatedAt
	service.UpdatedAt = time.Now()
	return r.store.services.put(service.ID.String(), *service)
}

func (r *ServiceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	service, ok := r.store.services.get(id.String())
	if !ok || service.UserID != userID {
		return apperrors.NewNotFound("service", nil)
	}
	return r.store.services.delete(id.String())
}

func (r *ServiceRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.Service, error) {
	var out []*model.Service
	for _, service := range r.store.services.list() {
		if service.UserID != userID {
			continue
		}
		s := service
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *ServiceRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, service := range r.store.services.list() {
		if service.UserID == userID {
			count++
		}
	}
	return count, nil
}

// Mirror stores a copy fetched from the primary tier.
func (r *ServiceRepository) Mirror(service *model.Service) {
	_ = r.store.services.put(service.ID.String(), *service)
}
