package models

import "time"

// Playlist is a user-curated list of songs.
type Playlist struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	UserID      int64     `json:"user_id" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	CoverImage  *string   `json:"cover_image" db:"cover_image"`
	Description *string   `json:"description" db:"description"`
	Active      bool      `json:"status" db:"status"`
	SongCount   int       `json:"song_count" db:"song_count"`
}

// PlaylistSong is one membership row joining a playlist to a song.
type PlaylistSong struct {
	ID         int64 `json:"id" db:"id"`
	PlaylistID int64 `json:"playlist_id" db:"playlist_id"`
	SongID     int64 `json:"song_id" db:"song_id"`
	Song       *Song `json:"song,omitempty"`
}

// PlaylistFilter narrows ListPlaylists. A nil UserID yields no playlists.
type PlaylistFilter struct {
	UserID *int64
	Search string
}

// PlaylistInput carries the writable playlist fields. The owner is fixed at
// creation; UserID is ignored on update.
type PlaylistInput struct {
	Name        string
	UserID      int64
	Description *string
	CoverImage  *string
	Active      *bool
}
