package postgrest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

type profileRepository struct {
	client *Client
}

func NewProfileRepository(client *Client) repository.ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now()
	return r.client.From("user_profile").Insert(ctx, profile, nil)
}

func (r *profileRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := r.client.From("user_profile").
		Eq("user_id", userID).
		Single().
		Get(ctx, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now()

	// Merge on the primary key so first-time edits create the row.
	return r.client.From("user_profile").
		OnConflict("user_id").
		Upsert(ctx, profile, nil)
}
