package local

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type ProfileRepository struct {
	store *Store
}

func NewProfileRepository(store *Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now()
	return r.store.profiles.put(profile.UserID.String(), *profile)
}

func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	profile, ok := r.store.profiles.get(userID.String())
	if !ok {
		return nil, apperrors.NewNotFound("profile", nil)
	}
	return &profile, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now()
	return r.store.profiles.put(profile.UserID.String(), *profile)
}

// Mirror stores a copy fetched from the primary tier.
func (r *ProfileRepository) Mirror(profile *model.Profile) {
	_ = r.store.profiles.put(profile.UserID.String(), *profile)
}
