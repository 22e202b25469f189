package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type Service struct {
	profileRepo repository.ProfileRepository
}

func NewService(profileRepo repository.ProfileRepository) *Service {
	return &Service{profileRepo: profileRepo}
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile applies the non-nil request fields. Accounts registered
// before the profile write landed get their row created here.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.Profile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		profile = &model.Profile{UserID: userID}
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.BusinessName != nil {
		profile.BusinessName = *req.BusinessName
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Address != nil {
		profile.Address = *req.Address
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}
