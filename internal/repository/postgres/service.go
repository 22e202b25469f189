package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

type serviceRepository struct {
	db *DB
}

func NewServiceRepository(db *DB) repository.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO user_services (id, user_id, name, description, duration, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	service.CreatedAt = time.Now()
	service.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.UserID,
		service.Name,
		service.Description,
		service.Duration,
		service.Price,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return classify("service", err)
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Service, error) {
	query := `
		SELECT id, user_id, name, description, duration, price, created_at, updated_at
		FROM user_services
		WHERE user_id = $1 AND id = $2
	`

	var service model.Service
	if err := r.db.GetContext(ctx, &service, query, userID, id); err != nil {
		return nil, classify("service", err)
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE user_services
		SET name = $1, description = $2, duration = $3, price = $4, updated_at = $5
		WHERE user_id = $6 AND id = $7
	`
	service.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		service.Name,
		service.Description,
		service.Duration,
		service.Price,
		service.UpdatedAt,
		service.UserID,
		service.ID,
	)
	if err != nil {
		return classify("service", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return classify("service", sql.ErrNoRows)
	}
	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM user_services WHERE user_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return classify("service", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return classify("service", sql.ErrNoRows)
	}
	return nil
}

func (r *serviceRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.Service, error) {
	query := `
		SELECT id, user_id, name, description, duration, price, created_at, updated_at
		FROM user_services
		WHERE user_id = $1
		ORDER BY name ASC
	`

	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, userID); err != nil {
		return nil, classify("service", err)
	}
	return services, nil
}

func (r *serviceRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM user_services WHERE user_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, classify("service", err)
	}
	return count, nil
}
