package store

import (
	"context"
	"fmt"

	"tunebox/internal/models"
)

// Totals counts the main catalog and audience tables in one round trip.
func (s *Store) Totals(ctx context.Context) (models.Totals, error) {
	var totals models.Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM songs),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_premium),
			(SELECT COUNT(*) FROM artists),
			(SELECT COUNT(*) FROM albums),
			(SELECT COUNT(*) FROM playlists)
	`).Scan(&totals.Songs, &totals.Users, &totals.PremiumUsers, &totals.Artists, &totals.Albums, &totals.Playlists)
	if err != nil {
		return models.Totals{}, fmt.Errorf("count totals: %w", err)
	}
	return totals, nil
}

// UsersByDate returns sign-up counts per calendar day, oldest first.
func (s *Store) UsersByDate(ctx context.Context) ([]models.DailyCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM users
		GROUP BY day
		ORDER BY day ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select users by date: %w", err)
	}
	defer rows.Close()

	counts := make([]models.DailyCount, 0)
	for rows.Next() {
		var c models.DailyCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily counts: %w", err)
	}
	return counts, nil
}
