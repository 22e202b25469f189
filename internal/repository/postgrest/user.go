package postgrest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

type userRepository struct {
	client *Client
}

func NewUserRepository(client *Client) repository.UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	return r.client.From("users").Insert(ctx, userRowFrom(user), nil)
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var row userRow
	err := r.client.From("users").
		Eq("id", id).
		Single().
		Get(ctx, &row)
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var row userRow
	err := r.client.From("users").
		Eq("email", email).
		Single().
		Get(ctx, &row)
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	return r.client.From("users").
		Eq("id", user.ID).
		Update(ctx, userRowFrom(user), nil)
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	var rows []userRow
	err := r.client.From("users").
		Order("created_at", true).
		Get(ctx, &rows)
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toModel())
	}
	return users, nil
}
