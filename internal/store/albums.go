package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tunebox/internal/models"
)

const albumSelect = `
		SELECT al.id, al.name, al.created_at, al.artist_id, ar.name, al.cover_image, al.status
		FROM albums al
		JOIN artists ar ON ar.id = al.artist_id`

func validateAlbum(in models.AlbumInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalidf("album name is required")
	}
	if in.CreatedAt.IsZero() {
		return invalidf("album creation date is required")
	}
	if in.ArtistID <= 0 {
		return invalidf("artist_id is required")
	}
	return nil
}

func scanAlbum(row interface{ Scan(...any) error }) (models.Album, error) {
	var (
		album  models.Album
		cover  sql.NullString
		status int
	)
	if err := row.Scan(&album.ID, &album.Name, &album.CreatedAt, &album.ArtistID, &album.ArtistName, &cover, &status); err != nil {
		return models.Album{}, err
	}
	album.CoverImage = stringPtr(cover)
	album.Active = statusActiveFrom(status)
	return album, nil
}

// ListAlbums returns every album with its artist name.
func (s *Store) ListAlbums(ctx context.Context) ([]models.Album, error) {
	rows, err := s.db.QueryContext(ctx, albumSelect+`
		ORDER BY al.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()

	albums := make([]models.Album, 0)
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return albums, nil
}

// GetAlbum returns a single album by its identifier.
func (s *Store) GetAlbum(ctx context.Context, id int64) (models.Album, error) {
	album, err := scanAlbum(s.db.QueryRowContext(ctx, albumSelect+`
		WHERE al.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Album{}, ErrAlbumNotFound
	}
	if err != nil {
		return models.Album{}, fmt.Errorf("get album: %w", err)
	}
	return album, nil
}

// CreateAlbum inserts an album under an existing artist.
func (s *Store) CreateAlbum(ctx context.Context, in models.AlbumInput) (models.Album, error) {
	if err := validateAlbum(in); err != nil {
		return models.Album{}, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO albums (name, created_at, artist_id, cover_image, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, strings.TrimSpace(in.Name), in.CreatedAt, in.ArtistID, nullIfEmpty(in.CoverImage), statusValue(active)).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Album{}, ErrArtistNotFound
		}
		return models.Album{}, fmt.Errorf("insert album: %w", err)
	}
	return s.GetAlbum(ctx, id)
}

// UpdateAlbum rewrites an album. When in.CoverImage is set the stored cover
// is replaced and the superseded reference is returned so the caller can
// release it once this update has committed.
func (s *Store) UpdateAlbum(ctx context.Context, id int64, in models.AlbumInput) (models.Album, *string, error) {
	if err := validateAlbum(in); err != nil {
		return models.Album{}, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Album{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var previous sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT cover_image
		FROM albums
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Album{}, nil, ErrAlbumNotFound
	}
	if err != nil {
		return models.Album{}, nil, fmt.Errorf("lock album: %w", err)
	}

	var status any
	if in.Active != nil {
		status = statusValue(*in.Active)
	}
	cover := any(previous)
	replaced := in.CoverImage != nil
	if replaced {
		cover = nullIfEmpty(in.CoverImage)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE albums
		SET name = $1,
		    created_at = $2,
		    artist_id = $3,
		    cover_image = $4,
		    status = COALESCE($5, status)
		WHERE id = $6
	`, strings.TrimSpace(in.Name), in.CreatedAt, in.ArtistID, cover, status, id); err != nil {
		if isForeignKeyViolation(err) {
			return models.Album{}, nil, ErrArtistNotFound
		}
		return models.Album{}, nil, fmt.Errorf("update album: %w", err)
	}

	album, err := scanAlbum(tx.QueryRowContext(ctx, albumSelect+`
		WHERE al.id = $1`, id))
	if err != nil {
		return models.Album{}, nil, fmt.Errorf("reload album: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Album{}, nil, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	if !replaced {
		return album, nil, nil
	}
	return album, stringPtr(previous), nil
}

// DeleteAlbum removes an album. Its songs stay in the catalog with a null
// album reference. The deleted cover reference, if any, is returned.
func (s *Store) DeleteAlbum(ctx context.Context, id int64) (*string, error) {
	var cover sql.NullString
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM albums
		WHERE id = $1
		RETURNING cover_image
	`, id).Scan(&cover)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete album: %w", err)
	}
	return stringPtr(cover), nil
}

// ToggleAlbumStatus flips the active flag and reports the new value.
func (s *Store) ToggleAlbumStatus(ctx context.Context, id int64) (bool, error) {
	var status int
	err := s.db.QueryRowContext(ctx, `
		UPDATE albums
		SET status = 1 - status
		WHERE id = $1
		RETURNING status
	`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrAlbumNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle album status: %w", err)
	}
	return statusActiveFrom(status), nil
}
