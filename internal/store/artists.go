package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tunebox/internal/models"
)

func validateArtist(in models.ArtistInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalidf("artist name is required")
	}
	return nil
}

func scanArtist(row interface{ Scan(...any) error }) (models.Artist, error) {
	var (
		artist models.Artist
		status int
	)
	if err := row.Scan(&artist.ID, &artist.Name, &status); err != nil {
		return models.Artist{}, err
	}
	artist.Active = statusActiveFrom(status)
	return artist, nil
}

// ListArtists returns every artist ordered by id.
func (s *Store) ListArtists(ctx context.Context) ([]models.Artist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status
		FROM artists
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select artists: %w", err)
	}
	defer rows.Close()

	artists := make([]models.Artist, 0)
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	return artists, nil
}

// GetArtist loads one artist.
func (s *Store) GetArtist(ctx context.Context, id int64) (models.Artist, error) {
	artist, err := scanArtist(s.db.QueryRowContext(ctx, `
		SELECT id, name, status
		FROM artists
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Artist{}, ErrArtistNotFound
	}
	if err != nil {
		return models.Artist{}, fmt.Errorf("get artist: %w", err)
	}
	return artist, nil
}

// CreateArtist inserts an artist; status defaults to active.
func (s *Store) CreateArtist(ctx context.Context, in models.ArtistInput) (models.Artist, error) {
	if err := validateArtist(in); err != nil {
		return models.Artist{}, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	artist, err := scanArtist(s.db.QueryRowContext(ctx, `
		INSERT INTO artists (name, status)
		VALUES ($1, $2)
		RETURNING id, name, status
	`, strings.TrimSpace(in.Name), statusValue(active)))
	if err != nil {
		return models.Artist{}, fmt.Errorf("insert artist: %w", err)
	}
	return artist, nil
}

// UpdateArtist renames an artist and optionally sets its status.
func (s *Store) UpdateArtist(ctx context.Context, id int64, in models.ArtistInput) (models.Artist, error) {
	if err := validateArtist(in); err != nil {
		return models.Artist{}, err
	}
	var status any
	if in.Active != nil {
		status = statusValue(*in.Active)
	}

	artist, err := scanArtist(s.db.QueryRowContext(ctx, `
		UPDATE artists
		SET name = $1,
		    status = COALESCE($2, status)
		WHERE id = $3
		RETURNING id, name, status
	`, strings.TrimSpace(in.Name), status, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Artist{}, ErrArtistNotFound
	}
	if err != nil {
		return models.Artist{}, fmt.Errorf("update artist: %w", err)
	}
	return artist, nil
}

// ToggleArtistStatus flips the active flag and returns the updated artist.
func (s *Store) ToggleArtistStatus(ctx context.Context, id int64) (models.Artist, error) {
	artist, err := scanArtist(s.db.QueryRowContext(ctx, `
		UPDATE artists
		SET status = 1 - status
		WHERE id = $1
		RETURNING id, name, status
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Artist{}, ErrArtistNotFound
	}
	if err != nil {
		return models.Artist{}, fmt.Errorf("toggle artist status: %w", err)
	}
	return artist, nil
}
