package customer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/cache"
	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

// Service owns the customer book. Customers are never hard-deleted: Delete
// parks them as inactive so their appointment history stays intact.
type Service struct {
	repo  repository.CustomerRepository
	cache *cache.Cache
}

func NewService(repo repository.CustomerRepository, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateCustomerRequest) (*model.Customer, error) {
	customer := &model.Customer{
		UserID:  userID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
		Status:  model.CustomerStatusActive,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.invalidate(userID)
	return customer, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*model.Customer, error) {
	key := cache.Key("customer", userID, id.String())
	return cache.Fetch(s.cache, key, func() (*model.Customer, error) {
		customer, err := s.repo.Get(ctx, userID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get customer: %w", err)
		}
		return customer, nil
	})
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter *model.CustomerFilter) ([]*model.Customer, error) {
	if filter == nil {
		filter = &model.CustomerFilter{}
	}
	key := cache.Key("customer", userID, "list", string(filter.Status), filter.SearchTerm)
	return cache.Fetch(s.cache, key, func() ([]*model.Customer, error) {
		customers, err := s.repo.List(ctx, userID, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list customers: %w", err)
		}
		return customers, nil
	})
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateCustomerRequest) (*model.Customer, error) {
	customer, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.invalidate(userID)
	return customer, nil
}

// Delete soft-deletes: the row is kept with status inactive.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.UpdateStatus(ctx, userID, id, model.CustomerStatusInactive); err != nil {
		return fmt.Errorf("failed to deactivate customer: %w", err)
	}
	s.invalidate(userID)
	return nil
}

// Restore brings an inactive customer back.
func (s *Service) Restore(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.UpdateStatus(ctx, userID, id, model.CustomerStatusActive); err != nil {
		return fmt.Errorf("failed to restore customer: %w", err)
	}
	s.invalidate(userID)
	return nil
}

func (s *Service) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	key := cache.Key("customer", userID, "count", "active")
	return cache.Fetch(s.cache, key, func() (int, error) {
		count, err := s.repo.CountByStatus(ctx, userID, model.CustomerStatusActive)
		if err != nil {
			return 0, fmt.Errorf("failed to count customers: %w", err)
		}
		return count, nil
	})
}

func (s *Service) invalidate(userID uuid.UUID) {
	s.cache.InvalidatePrefix(cache.Key("customer", userID))
}
