package playlists

import (
	"context"
	"fmt"
	"io"

	"tunebox/internal/logging"
	"tunebox/internal/media"
	"tunebox/internal/models"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	ListPlaylists(ctx context.Context, filter models.PlaylistFilter) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (models.Playlist, error)
	CreatePlaylist(ctx context.Context, in models.PlaylistInput) (models.Playlist, error)
	UpdatePlaylist(ctx context.Context, id int64, in models.PlaylistInput) (models.Playlist, *string, error)
	DeletePlaylist(ctx context.Context, id int64) (*string, error)
	ListPlaylistSongs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error)
	AddSongToPlaylist(ctx context.Context, playlistID, songID int64) (models.PlaylistSong, error)
	RemoveSongFromPlaylist(ctx context.Context, playlistID, songID int64) error
}

// MediaStore persists playlist covers.
type MediaStore interface {
	Save(ctx context.Context, kind media.Kind, filename string, r io.Reader) (string, error)
	Remove(ref string) error
}

// Service coordinates playlist-related operations.
type Service interface {
	List(ctx context.Context, filter models.PlaylistFilter) ([]models.Playlist, error)
	Get(ctx context.Context, id int64) (models.Playlist, error)
	Create(ctx context.Context, in models.PlaylistInput, cover *media.Upload) (models.Playlist, error)
	Update(ctx context.Context, id int64, in models.PlaylistInput, cover *media.Upload) (models.Playlist, error)
	Delete(ctx context.Context, id int64) error
	Songs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error)
	AddSong(ctx context.Context, playlistID, songID int64) (models.PlaylistSong, error)
	RemoveSong(ctx context.Context, playlistID, songID int64) error
}

type service struct {
	store Store
	media MediaStore
}

// New constructs a Service backed by the provided Store.
func New(store Store, mediaStore MediaStore) Service {
	return &service{store: store, media: mediaStore}
}

func (s *service) List(ctx context.Context, filter models.PlaylistFilter) ([]models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx, filter)
}

func (s *service) Get(ctx context.Context, id int64) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	return s.store.GetPlaylist(ctx, id)
}

func (s *service) Create(ctx context.Context, in models.PlaylistInput, cover *media.Upload) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}

	ref, err := s.saveCover(ctx, cover)
	if err != nil {
		return models.Playlist{}, err
	}
	if ref != "" {
		in.CoverImage = &ref
	}

	playlist, err := s.store.CreatePlaylist(ctx, in)
	if err != nil {
		s.release(ctx, ref)
		return models.Playlist{}, err
	}
	return playlist, nil
}

func (s *service) Update(ctx context.Context, id int64, in models.PlaylistInput, cover *media.Upload) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}

	ref, err := s.saveCover(ctx, cover)
	if err != nil {
		return models.Playlist{}, err
	}
	in.CoverImage = nil
	if ref != "" {
		in.CoverImage = &ref
	}

	playlist, previous, err := s.store.UpdatePlaylist(ctx, id, in)
	if err != nil {
		s.release(ctx, ref)
		return models.Playlist{}, err
	}
	if previous != nil && *previous != ref {
		s.release(ctx, *previous)
	}
	return playlist, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cover, err := s.store.DeletePlaylist(ctx, id)
	if err != nil {
		return err
	}
	if cover != nil {
		s.release(ctx, *cover)
	}
	return nil
}

func (s *service) Songs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylistSongs(ctx, playlistID)
}

func (s *service) AddSong(ctx context.Context, playlistID, songID int64) (models.PlaylistSong, error) {
	if err := ctx.Err(); err != nil {
		return models.PlaylistSong{}, err
	}
	return s.store.AddSongToPlaylist(ctx, playlistID, songID)
}

func (s *service) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.RemoveSongFromPlaylist(ctx, playlistID, songID)
}

func (s *service) saveCover(ctx context.Context, cover *media.Upload) (string, error) {
	if cover == nil || cover.Body == nil {
		return "", nil
	}
	ref, err := s.media.Save(ctx, media.KindPlaylistCover, cover.Filename, cover.Body)
	if err != nil {
		return "", fmt.Errorf("store playlist cover: %w", err)
	}
	return ref, nil
}

func (s *service) release(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.media.Remove(ref); err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("media_ref", ref).Msg("release playlist cover")
	}
}
