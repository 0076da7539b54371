package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tunebox/internal/models"
)

const songSelect = `
		SELECT s.id, s.name, s.artist_id, ar.name, s.album_id, s.duration, s.song_url,
		       s.status, s.premium, s.play_count, s.lyrics
		FROM songs s
		JOIN artists ar ON ar.id = s.artist_id`

func validateSong(in models.SongInput, requireMedia bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalidf("song name is required")
	}
	if in.ArtistID <= 0 {
		return invalidf("artist_id is required")
	}
	if in.AlbumID != nil && *in.AlbumID <= 0 {
		return invalidf("album_id must be positive")
	}
	if in.Duration <= 0 {
		return invalidf("duration must be a positive number of seconds")
	}
	if requireMedia && strings.TrimSpace(in.SongURL) == "" {
		return invalidf("song file is required")
	}
	return nil
}

// songReferenceError maps a foreign key violation on songs to the entity
// that was missing.
func songReferenceError(err error) error {
	if strings.Contains(constraintName(err), "album") {
		return ErrAlbumNotFound
	}
	return ErrArtistNotFound
}

func scanSong(row interface{ Scan(...any) error }) (models.Song, error) {
	var (
		song   models.Song
		album  sql.NullInt64
		lyrics sql.NullString
		status int
	)
	if err := row.Scan(&song.ID, &song.Name, &song.ArtistID, &song.ArtistName, &album, &song.Duration,
		&song.SongURL, &status, &song.Premium, &song.PlayCount, &lyrics); err != nil {
		return models.Song{}, err
	}
	song.AlbumID = int64Ptr(album)
	song.Lyrics = stringPtr(lyrics)
	song.Active = statusActiveFrom(status)
	return song, nil
}

func scanSongRows(rows *sql.Rows) ([]models.Song, error) {
	songs := make([]models.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// ListSongs returns songs matching the filter. Search is a case-insensitive
// substring match on the song name or the artist name.
func (s *Store) ListSongs(ctx context.Context, filter models.SongFilter) ([]models.Song, error) {
	query := songSelect

	var (
		clauses []string
		args    []any
	)

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		clauses = append(clauses, fmt.Sprintf("(s.name ILIKE $%d OR ar.name ILIKE $%d)", len(args), len(args)))
	}
	if filter.AlbumID != nil {
		args = append(args, *filter.AlbumID)
		clauses = append(clauses, fmt.Sprintf("s.album_id = $%d", len(args)))
	}

	if len(clauses) > 0 {
		query += "\n\t\tWHERE " + strings.Join(clauses, " AND ")
	}
	query += "\n\t\tORDER BY s.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select songs: %w", err)
	}
	defer rows.Close()

	return scanSongRows(rows)
}

// ListSongsByAlbum returns the songs of an existing album.
func (s *Store) ListSongsByAlbum(ctx context.Context, albumID int64) ([]models.Song, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM albums WHERE id = $1)`, albumID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check album: %w", err)
	}
	if !exists {
		return nil, ErrAlbumNotFound
	}
	return s.ListSongs(ctx, models.SongFilter{AlbumID: &albumID})
}

// GetSong returns a single song by its identifier.
func (s *Store) GetSong(ctx context.Context, id int64) (models.Song, error) {
	return getSong(ctx, s.db, id)
}

func getSong(ctx context.Context, q queryRower, id int64) (models.Song, error) {
	song, err := scanSong(q.QueryRowContext(ctx, songSelect+`
		WHERE s.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Song{}, ErrSongNotFound
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// CreateSong inserts a song. The artist must exist, as must the album when one
// is given.
func (s *Store) CreateSong(ctx context.Context, in models.SongInput) (models.Song, error) {
	if err := validateSong(in, true); err != nil {
		return models.Song{}, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	premium := false
	if in.Premium != nil {
		premium = *in.Premium
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO songs (name, artist_id, album_id, duration, song_url, status, premium, lyrics)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, strings.TrimSpace(in.Name), in.ArtistID, in.AlbumID, in.Duration, strings.TrimSpace(in.SongURL),
		statusValue(active), premium, nullIfEmpty(in.Lyrics)).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Song{}, songReferenceError(err)
		}
		return models.Song{}, fmt.Errorf("insert song: %w", err)
	}
	return s.GetSong(ctx, id)
}

// UpdateSong rewrites a song. When in.SongURL is set the media reference is
// replaced and the superseded one is returned for release after commit; an
// empty result means nothing was superseded.
func (s *Store) UpdateSong(ctx context.Context, id int64, in models.SongInput) (models.Song, string, error) {
	if err := validateSong(in, false); err != nil {
		return models.Song{}, "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Song{}, "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var previous string
	err = tx.QueryRowContext(ctx, `
		SELECT song_url
		FROM songs
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Song{}, "", ErrSongNotFound
	}
	if err != nil {
		return models.Song{}, "", fmt.Errorf("lock song: %w", err)
	}

	songURL := previous
	if url := strings.TrimSpace(in.SongURL); url != "" {
		songURL = url
	}
	var status, premium any
	if in.Active != nil {
		status = statusValue(*in.Active)
	}
	if in.Premium != nil {
		premium = *in.Premium
	}
	// Lyrics are only touched when supplied; an empty value clears them.
	setLyrics := in.Lyrics != nil

	if _, err := tx.ExecContext(ctx, `
		UPDATE songs
		SET name = $1,
		    artist_id = $2,
		    album_id = $3,
		    duration = $4,
		    song_url = $5,
		    status = COALESCE($6, status),
		    premium = COALESCE($7, premium),
		    lyrics = CASE WHEN $8 THEN $9 ELSE lyrics END
		WHERE id = $10
	`, strings.TrimSpace(in.Name), in.ArtistID, in.AlbumID, in.Duration, songURL, status, premium,
		setLyrics, nullIfEmpty(in.Lyrics), id); err != nil {
		if isForeignKeyViolation(err) {
			return models.Song{}, "", songReferenceError(err)
		}
		return models.Song{}, "", fmt.Errorf("update song: %w", err)
	}

	song, err := getSong(ctx, tx, id)
	if err != nil {
		return models.Song{}, "", err
	}

	if err := tx.Commit(); err != nil {
		return models.Song{}, "", fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	if songURL == previous {
		return song, "", nil
	}
	return song, previous, nil
}

// DeleteSong removes a song along with its playlist memberships and returns
// the media reference it held.
func (s *Store) DeleteSong(ctx context.Context, id int64) (string, error) {
	var songURL string
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM songs
		WHERE id = $1
		RETURNING song_url
	`, id).Scan(&songURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSongNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete song: %w", err)
	}
	return songURL, nil
}

// IncrementPlayCount adds exactly one play and returns the new total.
func (s *Store) IncrementPlayCount(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE songs
		SET play_count = play_count + 1
		WHERE id = $1
		RETURNING play_count
	`, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSongNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment play count: %w", err)
	}
	return count, nil
}
