package local

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

// UserRepository is returned as a concrete type so the fallback layer can
// reach Mirror; it satisfies repository.UserRepository.
type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if _, err := r.GetByEmail(ctx, user.Email); err == nil {
		return apperrors.NewConflict("user", nil)
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	return r.store.users.put(user.ID.String(), *user)
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.store.users.get(id.String())
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range r.store.users.list() {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	if _, ok := r.store.users.get(user.ID.String()); !ok {
		return apperrors.NewNotFound("user", nil)
	}
	user.UpdatedAt = time.Now()
	return r.store.users.put(user.ID.String(), *user)
}

func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	rows := r.store.users.list()
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })

	users := make([]*model.User, 0, len(rows))
	for i := range rows {
		users = append(users, &rows[i])
	}
	return users, nil
}

// Mirror stores a copy fetched from the primary tier, bypassing uniqueness
// checks.
func (r *UserRepository) Mirror(user *model.User) {
	_ = r.store.users.put(user.ID.String(), *user)
}
