package artists

import (
	"context"

	"tunebox/internal/models"
)

// Store captures the persistence needs for artist workflows.
type Store interface {
	ListArtists(ctx context.Context) ([]models.Artist, error)
	GetArtist(ctx context.Context, id int64) (models.Artist, error)
	CreateArtist(ctx context.Context, in models.ArtistInput) (models.Artist, error)
	UpdateArtist(ctx context.Context, id int64, in models.ArtistInput) (models.Artist, error)
	ToggleArtistStatus(ctx context.Context, id int64) (models.Artist, error)
}

// Service exposes artist operations. Artists are never hard-deleted.
type Service interface {
	List(ctx context.Context) ([]models.Artist, error)
	Get(ctx context.Context, id int64) (models.Artist, error)
	Create(ctx context.Context, in models.ArtistInput) (models.Artist, error)
	Update(ctx context.Context, id int64, in models.ArtistInput) (models.Artist, error)
	ToggleStatus(ctx context.Context, id int64) (models.Artist, error)
}

type service struct {
	store Store
}

// New constructs an artist Service.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context) ([]models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListArtists(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	return s.store.GetArtist(ctx, id)
}

func (s *service) Create(ctx context.Context, in models.ArtistInput) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	return s.store.CreateArtist(ctx, in)
}

func (s *service) Update(ctx context.Context, id int64, in models.ArtistInput) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	return s.store.UpdateArtist(ctx, id, in)
}

func (s *service) ToggleStatus(ctx context.Context, id int64) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	return s.store.ToggleArtistStatus(ctx, id)
}
