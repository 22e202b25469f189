package fallback

import (
	"context"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/internal/repository/local"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type profileRepository struct {
	guard
	primary repository.ProfileRepository
	replica *local.ProfileRepository
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	done := r.instrument("profile", "create")
	err := r.primary.Create(ctx, profile)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(profile)
	return nil
}

func (r *profileRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	done := r.instrument("profile", "get")
	profile, err := r.primary.Get(ctx, userID)
	done(err)
	if err == nil {
		r.replica.Mirror(profile)
		return profile, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("profile", "get", err)
	return r.replica.Get(ctx, userID)
}

func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	done := r.instrument("profile", "update")
	err := r.primary.Update(ctx, profile)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(profile)
	return nil
}
