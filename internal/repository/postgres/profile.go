package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

type profileRepository struct {
	db *DB
}

func NewProfileRepository(db *DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO user_profile (user_id, name, business_name, phone, address, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	profile.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		profile.UserID,
		profile.Name,
		profile.BusinessName,
		profile.Phone,
		profile.Address,
		profile.UpdatedAt,
	)
	if err != nil {
		return classify("profile", err)
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT user_id, name, business_name, phone, address, updated_at
		FROM user_profile
		WHERE user_id = $1
	`

	var profile model.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, classify("profile", err)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	query := `
		UPDATE user_profile
		SET name = $1, business_name = $2, phone = $3, address = $4, updated_at = $5
		WHERE user_id = $6
	`
	profile.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		profile.Name,
		profile.BusinessName,
		profile.Phone,
		profile.Address,
		profile.UpdatedAt,
		profile.UserID,
	)
	if err != nil {
		return classify("profile", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Upsert keeps profile edits working for owners created before the
		// profile table existed.
		return r.Create(ctx, profile)
	}
	return nil
}
