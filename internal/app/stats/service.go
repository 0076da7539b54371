package stats

import (
	"context"

	"tunebox/internal/models"
)

// Store provides the aggregate queries behind the dashboard.
type Store interface {
	Totals(ctx context.Context) (models.Totals, error)
	UsersByDate(ctx context.Context) ([]models.DailyCount, error)
}

// Service exposes dashboard statistics.
type Service interface {
	Totals(ctx context.Context) (models.Totals, error)
	UsersByDate(ctx context.Context) ([]models.DailyCount, error)
}

type service struct {
	store Store
}

// New constructs a stats Service.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Totals(ctx context.Context) (models.Totals, error) {
	if err := ctx.Err(); err != nil {
		return models.Totals{}, err
	}
	return s.store.Totals(ctx)
}

func (s *service) UsersByDate(ctx context.Context) ([]models.DailyCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.UsersByDate(ctx)
}
