package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/cache"
	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

// Service manages the offered-services catalog (name, duration, price).
type Service struct {
	repo  repository.ServiceRepository
	cache *cache.Cache
}

func NewService(repo repository.ServiceRepository, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateServiceRequest) (*model.Service, error) {
	service := &model.Service{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		Price:       req.Price,
	}
	if err := s.repo.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.invalidate(userID)
	return service, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*model.Service, error) {
	key := cache.Key("service", userID, id.String())
	return cache.Fetch(s.cache, key, func() (*model.Service, error) {
		service, err := s.repo.Get(ctx, userID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get service: %w", err)
		}
		return service, nil
	})
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*model.Service, error) {
	key := cache.Key("service", userID, "list")
	return cache.Fetch(s.cache, key, func() ([]*model.Service, error) {
		services, err := s.repo.List(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list services: %w", err)
		}
		return services, nil
	})
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	service, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Duration != nil {
		service.Duration = *req.Duration
	}
	if req.Price != nil {
		service.Price = *req.Price
	}

	if err := s.repo.Update(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	s.invalidate(userID)
	return service, nil
}

// Delete removes the row. Appointments keep their service reference as a
// nullable link, so history survives.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	s.invalidate(userID)
	return nil
}

func (s *Service) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	key := cache.Key("service", userID, "count")
	return cache.Fetch(s.cache, key, func() (int, error) {
		count, err := s.repo.Count(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to count services: %w", err)
		}
		return count, nil
	})
}

func (s *Service) invalidate(userID uuid.UUID) {
	s.cache.InvalidatePrefix(cache.Key("service", userID))
}
