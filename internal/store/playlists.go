package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tunebox/internal/models"
)

const playlistSelect = `
		SELECT p.id, p.name, p.user_id, p.created_at, p.cover_image, p.description, p.status,
		       (SELECT COUNT(*) FROM playlist_songs ps WHERE ps.playlist_id = p.id)
		FROM playlists p`

func validatePlaylist(in models.PlaylistInput, requireOwner bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalidf("playlist name is required")
	}
	if requireOwner && in.UserID <= 0 {
		return invalidf("user_id is required")
	}
	return nil
}

func scanPlaylist(row interface{ Scan(...any) error }) (models.Playlist, error) {
	var (
		playlist    models.Playlist
		cover, desc sql.NullString
		status      int
	)
	if err := row.Scan(&playlist.ID, &playlist.Name, &playlist.UserID, &playlist.CreatedAt,
		&cover, &desc, &status, &playlist.SongCount); err != nil {
		return models.Playlist{}, err
	}
	playlist.CoverImage = stringPtr(cover)
	playlist.Description = stringPtr(desc)
	playlist.Active = statusActiveFrom(status)
	return playlist, nil
}

// ListPlaylists returns the playlists of one user. Without a user id the
// result is always empty; listings are never global.
func (s *Store) ListPlaylists(ctx context.Context, filter models.PlaylistFilter) ([]models.Playlist, error) {
	playlists := make([]models.Playlist, 0)
	if filter.UserID == nil {
		return playlists, nil
	}

	query := playlistSelect + `
		WHERE p.user_id = $1`
	args := []any{*filter.UserID}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		query += fmt.Sprintf(" AND p.name ILIKE $%d", len(args))
	}
	query += `
		ORDER BY p.created_at DESC, p.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select playlists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// GetPlaylist loads one playlist with its song count.
func (s *Store) GetPlaylist(ctx context.Context, id int64) (models.Playlist, error) {
	return getPlaylist(ctx, s.db, id)
}

func getPlaylist(ctx context.Context, q queryRower, id int64) (models.Playlist, error) {
	playlist, err := scanPlaylist(q.QueryRowContext(ctx, playlistSelect+`
		WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Playlist{}, ErrPlaylistNotFound
	}
	if err != nil {
		return models.Playlist{}, fmt.Errorf("get playlist: %w", err)
	}
	return playlist, nil
}

// CreatePlaylist inserts a playlist owned by an existing user.
func (s *Store) CreatePlaylist(ctx context.Context, in models.PlaylistInput) (models.Playlist, error) {
	if err := validatePlaylist(in, true); err != nil {
		return models.Playlist{}, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (name, user_id, cover_image, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, strings.TrimSpace(in.Name), in.UserID, nullIfEmpty(in.CoverImage), nullIfEmpty(in.Description), statusValue(active)).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Playlist{}, ErrUserNotFound
		}
		return models.Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}
	return s.GetPlaylist(ctx, id)
}

// UpdatePlaylist rewrites name, description, status and optionally the
// cover. The superseded cover reference is returned when replaced.
func (s *Store) UpdatePlaylist(ctx context.Context, id int64, in models.PlaylistInput) (models.Playlist, *string, error) {
	if err := validatePlaylist(in, false); err != nil {
		return models.Playlist{}, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Playlist{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var previous sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT cover_image
		FROM playlists
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Playlist{}, nil, ErrPlaylistNotFound
	}
	if err != nil {
		return models.Playlist{}, nil, fmt.Errorf("lock playlist: %w", err)
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
		UPDATE playlists
		SET name = $1,
		    description = $2,
		    cover_image = $3,
		    status = COALESCE($4, status)
		WHERE id = $5
	`, strings.TrimSpace(in.Name), nullIfEmpty(in.Description), cover, status, id); err != nil {
		return models.Playlist{}, nil, fmt.Errorf("update playlist: %w", err)
	}

	playlist, err := getPlaylist(ctx, tx, id)
	if err != nil {
		return models.Playlist{}, nil, err
	}

	if err := tx.Commit(); err != nil {
		return models.Playlist{}, nil, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	if !replaced {
		return playlist, nil, nil
	}
	return playlist, stringPtr(previous), nil
}

// DeletePlaylist removes a playlist and, by cascade, its memberships. The
// cover reference it held is returned.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) (*string, error) {
	var cover sql.NullString
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM playlists
		WHERE id = $1
		RETURNING cover_image
	`, id).Scan(&cover)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete playlist: %w", err)
	}
	return stringPtr(cover), nil
}

// ListPlaylistSongs returns the memberships of a playlist in insertion order,
// each carrying its song.
func (s *Store) ListPlaylistSongs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM playlists WHERE id = $1)`, playlistID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check playlist: %w", err)
	}
	if !exists {
		return nil, ErrPlaylistNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ps.id, ps.playlist_id, s.id, s.name, s.artist_id, ar.name, s.album_id, s.duration, s.song_url,
		       s.status, s.premium, s.play_count, s.lyrics
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		JOIN artists ar ON ar.id = s.artist_id
		WHERE ps.playlist_id = $1
		ORDER BY ps.id ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("select playlist songs: %w", err)
	}
	defer rows.Close()

	entries := make([]models.PlaylistSong, 0)
	for rows.Next() {
		var (
			entry  models.PlaylistSong
			song   models.Song
			album  sql.NullInt64
			lyrics sql.NullString
			status int
		)
		if err := rows.Scan(&entry.ID, &entry.PlaylistID, &song.ID, &song.Name, &song.ArtistID, &song.ArtistName,
			&album, &song.Duration, &song.SongURL, &status, &song.Premium, &song.PlayCount, &lyrics); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		song.AlbumID = int64Ptr(album)
		song.Lyrics = stringPtr(lyrics)
		song.Active = statusActiveFrom(status)
		entry.SongID = song.ID
		entry.Song = &song
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return entries, nil
}

// AddSongToPlaylist records a membership. Both rows are checked and the
// insert is made in one transaction; the unique (playlist_id, song_id)
// constraint turns a duplicate into ErrSongAlreadyInPlaylist.
func (s *Store) AddSongToPlaylist(ctx context.Context, playlistID, songID int64) (models.PlaylistSong, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.PlaylistSong{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var locked int64
	err = tx.QueryRowContext(ctx, `
		SELECT id
		FROM playlists
		WHERE id = $1
		FOR UPDATE
	`, playlistID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlaylistSong{}, ErrPlaylistNotFound
	}
	if err != nil {
		return models.PlaylistSong{}, fmt.Errorf("lock playlist: %w", err)
	}

	song, err := getSong(ctx, tx, songID)
	if err != nil {
		return models.PlaylistSong{}, err
	}

	entry := models.PlaylistSong{PlaylistID: playlistID, SongID: songID, Song: &song}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO playlist_songs (playlist_id, song_id)
		VALUES ($1, $2)
		RETURNING id
	`, playlistID, songID).Scan(&entry.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.PlaylistSong{}, ErrSongAlreadyInPlaylist
		}
		if isForeignKeyViolation(err) {
			return models.PlaylistSong{}, ErrSongNotFound
		}
		return models.PlaylistSong{}, fmt.Errorf("insert playlist song: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.PlaylistSong{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return entry, nil
}

// RemoveSongFromPlaylist deletes a membership.
func (s *Store) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM playlist_songs
		WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID)
	if err != nil {
		return fmt.Errorf("delete playlist song: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSongNotInPlaylist
	}
	return nil
}
