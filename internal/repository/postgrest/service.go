package postgrest

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type serviceRepository struct {
	client *Client
}

func NewServiceRepository(client *Client) repository.ServiceRepository {
	return &serviceRepository{client: client}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	service.CreatedAt = time.Now()
	service.UpdatedAt = time.Now()

	return r.client.From("user_services").Insert(ctx, service, nil)
}

func (r *serviceRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Service, error) {
	var service model.Service
	err := r.client.From("user_services").
		Eq("user_id", userID).
		Eq("id", id).
		Single().
		Get(ctx, &service)
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	service.UpdatedAt = time.Now()

	payload := map[string]interface{}{
		"name":        service.Name,
		"description": service.Description,
		"duration":    service.Duration,
		"price":       service.Price,
		"updated_at":  rfc3339(service.UpdatedAt),
	}

	return r.client.From("user_services").
		Eq("user_id", service.UserID).
		Eq("id", service.ID).
		Update(ctx, payload, nil)
}

func (r *serviceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := r.client.From("user_services").
		Eq("user_id", userID).
		Eq("id", id).
		Delete(ctx)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperrors.NewNotFound("service", sql.ErrNoRows)
	}
	return nil
}

func (r *serviceRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.Service, error) {
	var services []*model.Service
	err := r.client.From("user_services").
		Eq("user_id", userID).
		Order("name", true).
		Get(ctx, &services)
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *serviceRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.client.From("user_services").
		Eq("user_id", userID).
		Count(ctx)
}
