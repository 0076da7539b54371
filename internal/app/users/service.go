package users

import (
	"context"

	"tunebox/internal/logging"
	"tunebox/internal/models"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) (models.User, error)
	UpdateUser(ctx context.Context, id int64, in models.UserInput) (models.User, error)
	DeleteUser(ctx context.Context, id int64) ([]string, error)
	ToggleUserStatus(ctx context.Context, id int64) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	ChangePassword(ctx context.Context, id int64, current, replacement string) error
}

// MediaStore releases files owned by a deleted account.
type MediaStore interface {
	Remove(ref string) error
}

// Service exposes the user directory.
type Service interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id int64) (models.User, error)
	Create(ctx context.Context, in models.UserInput) (models.User, error)
	Update(ctx context.Context, id int64, in models.UserInput) (models.User, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	ChangePassword(ctx context.Context, id int64, current, replacement string) error
}

type service struct {
	store Store
	media MediaStore
}

// New wires a Service backed by the provided Store.
func New(store Store, mediaStore MediaStore) Service {
	return &service{store: store, media: mediaStore}
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.GetUser(ctx, id)
}

func (s *service) Create(ctx context.Context, in models.UserInput) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.CreateUser(ctx, in)
}

func (s *service) Update(ctx context.Context, id int64, in models.UserInput) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.UpdateUser(ctx, id, in)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	covers, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	for _, ref := range covers {
		if err := s.media.Remove(ref); err != nil {
			logging.WithContext(ctx).Warn().Err(err).Str("media_ref", ref).Msg("release playlist cover")
		}
	}
	return nil
}

func (s *service) ToggleStatus(ctx context.Context, id int64) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.ToggleUserStatus(ctx, id)
}

func (s *service) Login(ctx context.Context, email, password string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.Authenticate(ctx, email, password)
}

func (s *service) ChangePassword(ctx context.Context, id int64, current, replacement string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.ChangePassword(ctx, id, current, replacement)
}
