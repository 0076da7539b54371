package models

import "time"

// Artist is a performer in the catalog.
type Artist struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Active bool   `json:"status" db:"status"`
}

// Album groups songs by one artist. CoverImage is a media reference, not a URL.
type Album struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ArtistID   int64     `json:"artist_id" db:"artist_id"`
	ArtistName string    `json:"artist_name,omitempty" db:"artist_name"`
	CoverImage *string   `json:"cover_image" db:"cover_image"`
	Active     bool      `json:"status" db:"status"`
}

// Song is a playable track. AlbumID is nil for singles and for songs whose
// album was deleted.
type Song struct {
	ID         int64   `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	ArtistID   int64   `json:"artist_id" db:"artist_id"`
	ArtistName string  `json:"artist_name,omitempty" db:"artist_name"`
	AlbumID    *int64  `json:"album_id" db:"album_id"`
	Duration   int     `json:"duration" db:"duration"`
	SongURL    string  `json:"song_url" db:"song_url"`
	Active     bool    `json:"status" db:"status"`
	Premium    bool    `json:"premium" db:"premium"`
	PlayCount  int64   `json:"play_count" db:"play_count"`
	Lyrics     *string `json:"lyrics" db:"lyrics"`
}

// SongFilter narrows ListSongs. Search matches song or artist name.
type SongFilter struct {
	Search  string
	AlbumID *int64
}

// ArtistInput carries the writable artist fields.
type ArtistInput struct {
	Name   string `json:"name"`
	Active *bool  `json:"status,omitempty"`
}

// AlbumInput carries the writable album fields. A nil CoverImage on update
// keeps the stored reference.
type AlbumInput struct {
	Name       string
	CreatedAt  time.Time
	ArtistID   int64
	CoverImage *string
	Active     *bool
}

// SongInput carries the writable song fields. An empty SongURL on update
// keeps the stored media reference.
type SongInput struct {
	Name     string
	ArtistID int64
	AlbumID  *int64
	Duration int
	SongURL  string
	Active   *bool
	Premium  *bool
	Lyrics   *string
}
