package search

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Store defines the persistence operations required by the search handler.
type Store interface {
	Search(ctx context.Context, query string, limit int) (Results, error)
}

// Results captures the different result buckets surfaced by the handler.
type Results struct {
	Artists []ArtistResult
	Albums  []AlbumResult
	Songs   []SongResult
}

// ArtistResult summarises an artist match.
type ArtistResult struct {
	ID         int64
	Name       string
	AlbumCount int
}

// AlbumResult summarises an album match.
type AlbumResult struct {
	ID          int64
	Name        string
	Artist      string
	ReleaseYear int
	CoverImage  string
}

// SongResult summarises a song match.
type SongResult struct {
	ID         int64
	Name       string
	Artist     string
	Album      string
	CoverImage string
	Premium    bool
}

// PGStore implements Store using PostgreSQL. Only active catalog rows are
// searchable.
type PGStore struct {
	db *sql.DB
}

// NewPGStore creates a Store backed by the supplied database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// Search performs a fan-out query across artists, albums, and songs.
func (s *PGStore) Search(ctx context.Context, query string, limit int) (Results, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	like := "%" + likeEscaper.Replace(query) + "%"

	artists, err := s.fetchArtists(ctx, like, limit)
	if err != nil {
		return Results{}, err
	}

	albums, err := s.fetchAlbums(ctx, like, limit)
	if err != nil {
		return Results{}, err
	}

	songs, err := s.fetchSongs(ctx, like, limit)
	if err != nil {
		return Results{}, err
	}

	return Results{
		Artists: artists,
		Albums:  albums,
		Songs:   songs,
	}, nil
}

func (s *PGStore) fetchArtists(ctx context.Context, like string, limit int) ([]ArtistResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ar.id, ar.name, COUNT(al.id) AS album_count
		FROM artists ar
		LEFT JOIN albums al ON al.artist_id = ar.id AND al.status = 1
		WHERE ar.status = 1 AND ar.name ILIKE $1
		GROUP BY ar.id, ar.name
		ORDER BY album_count DESC, ar.name ASC
		LIMIT $2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search artists: %w", err)
	}
	defer rows.Close()

	results := make([]ArtistResult, 0)
	for rows.Next() {
		var artist ArtistResult
		if err := rows.Scan(&artist.ID, &artist.Name, &artist.AlbumCount); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		results = append(results, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}

	return results, nil
}

func (s *PGStore) fetchAlbums(ctx context.Context, like string, limit int) ([]AlbumResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT al.id, al.name, ar.name, EXTRACT(YEAR FROM al.created_at)::INT, COALESCE(al.cover_image, '')
		FROM albums al
		JOIN artists ar ON ar.id = al.artist_id
		WHERE al.status = 1 AND (al.name ILIKE $1 OR ar.name ILIKE $1)
		ORDER BY al.created_at DESC, al.id DESC
		LIMIT $2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search albums: %w", err)
	}
	defer rows.Close()

	results := make([]AlbumResult, 0)
	for rows.Next() {
		var album AlbumResult
		if err := rows.Scan(&album.ID, &album.Name, &album.Artist, &album.ReleaseYear, &album.CoverImage); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		results = append(results, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}

	return results, nil
}

func (s *PGStore) fetchSongs(ctx context.Context, like string, limit int) ([]SongResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, ar.name, COALESCE(al.name, ''), COALESCE(al.cover_image, ''), s.premium
		FROM songs s
		JOIN artists ar ON ar.id = s.artist_id
		LEFT JOIN albums al ON al.id = s.album_id
		WHERE s.status = 1 AND (s.name ILIKE $1 OR ar.name ILIKE $1)
		ORDER BY s.play_count DESC, s.id ASC
		LIMIT $2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	defer rows.Close()

	results := make([]SongResult, 0)
	for rows.Next() {
		var song SongResult
		if err := rows.Scan(&song.ID, &song.Name, &song.Artist, &song.Album, &song.CoverImage, &song.Premium); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		results = append(results, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}

	return results, nil
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
