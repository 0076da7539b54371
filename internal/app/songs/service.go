package songs

import (
	"context"
	"fmt"
	"io"

	"tunebox/internal/logging"
	"tunebox/internal/media"
	"tunebox/internal/models"
)

// Store captures the persistence needs for song workflows.
type Store interface {
	ListSongs(ctx context.Context, filter models.SongFilter) ([]models.Song, error)
	GetSong(ctx context.Context, id int64) (models.Song, error)
	CreateSong(ctx context.Context, in models.SongInput) (models.Song, error)
	UpdateSong(ctx context.Context, id int64, in models.SongInput) (models.Song, string, error)
	DeleteSong(ctx context.Context, id int64) (string, error)
	IncrementPlayCount(ctx context.Context, id int64) (int64, error)
}

// MediaStore persists audio files.
type MediaStore interface {
	Save(ctx context.Context, kind media.Kind, filename string, r io.Reader) (string, error)
	Remove(ref string) error
}

// Service exposes song-centric operations.
type Service interface {
	List(ctx context.Context, filter models.SongFilter) ([]models.Song, error)
	Get(ctx context.Context, id int64) (models.Song, error)
	Create(ctx context.Context, in models.SongInput, file *media.Upload) (models.Song, error)
	Update(ctx context.Context, id int64, in models.SongInput, file *media.Upload) (models.Song, error)
	Delete(ctx context.Context, id int64) error
	Play(ctx context.Context, id int64) (int64, error)
}

type service struct {
	store Store
	media MediaStore
}

// New constructs a song Service.
func New(store Store, mediaStore MediaStore) Service {
	return &service{store: store, media: mediaStore}
}

func (s *service) List(ctx context.Context, filter models.SongFilter) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongs(ctx, filter)
}

func (s *service) Get(ctx context.Context, id int64) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	return s.store.GetSong(ctx, id)
}

func (s *service) Create(ctx context.Context, in models.SongInput, file *media.Upload) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	ref, err := s.saveFile(ctx, file)
	if err != nil {
		return models.Song{}, err
	}
	in.SongURL = ref

	song, err := s.store.CreateSong(ctx, in)
	if err != nil {
		s.release(ctx, ref)
		return models.Song{}, err
	}
	return song, nil
}

func (s *service) Update(ctx context.Context, id int64, in models.SongInput, file *media.Upload) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	ref, err := s.saveFile(ctx, file)
	if err != nil {
		return models.Song{}, err
	}
	in.SongURL = ref

	song, previous, err := s.store.UpdateSong(ctx, id, in)
	if err != nil {
		s.release(ctx, ref)
		return models.Song{}, err
	}
	if previous != "" && previous != ref {
		s.release(ctx, previous)
	}
	return song, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ref, err := s.store.DeleteSong(ctx, id)
	if err != nil {
		return err
	}
	s.release(ctx, ref)
	return nil
}

func (s *service) Play(ctx context.Context, id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.store.IncrementPlayCount(ctx, id)
}

func (s *service) saveFile(ctx context.Context, file *media.Upload) (string, error) {
	if file == nil || file.Body == nil {
		return "", nil
	}
	ref, err := s.media.Save(ctx, media.KindSong, file.Filename, file.Body)
	if err != nil {
		return "", fmt.Errorf("store song file: %w", err)
	}
	return ref, nil
}

func (s *service) release(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.media.Remove(ref); err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("media_ref", ref).Msg("release song file")
	}
}
