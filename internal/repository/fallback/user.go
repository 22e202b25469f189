package fallback

import (
	"context"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/internal/repository/local"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type userRepository struct {
	guard
	primary repository.UserRepository
	replica *local.UserRepository
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	done := r.instrument("user", "create")
	err := r.primary.Create(ctx, user)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(user)
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	done := r.instrument("user", "get")
	user, err := r.primary.Get(ctx, id)
	done(err)
	if err == nil {
		r.replica.Mirror(user)
		return user, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("user", "get", err)
	return r.replica.Get(ctx, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	done := r.instrument("user", "get_by_email")
	user, err := r.primary.GetByEmail(ctx, email)
	done(err)
	if err == nil {
		r.replica.Mirror(user)
		return user, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("user", "get_by_email", err)
	return r.replica.GetByEmail(ctx, email)
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	done := r.instrument("user", "update")
	err := r.primary.Update(ctx, user)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(user)
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	done := r.instrument("user", "list")
	users, err := r.primary.List(ctx)
	done(err)
	if err == nil {
		for _, user := range users {
			r.replica.Mirror(user)
		}
		return users, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("user", "list", err)
	return r.replica.List(ctx)
}
