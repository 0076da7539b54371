package albums

import (
	"context"
	"fmt"
	"io"

	"tunebox/internal/logging"
	"tunebox/internal/media"
	"tunebox/internal/models"
)

// Store captures the persistence needs for album workflows.
type Store interface {
	ListAlbums(ctx context.Context) ([]models.Album, error)
	GetAlbum(ctx context.Context, id int64) (models.Album, error)
	ListSongsByAlbum(ctx context.Context, albumID int64) ([]models.Song, error)
	CreateAlbum(ctx context.Context, in models.AlbumInput) (models.Album, error)
	UpdateAlbum(ctx context.Context, id int64, in models.AlbumInput) (models.Album, *string, error)
	DeleteAlbum(ctx context.Context, id int64) (*string, error)
	ToggleAlbumStatus(ctx context.Context, id int64) (bool, error)
}

// MediaStore persists cover images.
type MediaStore interface {
	Save(ctx context.Context, kind media.Kind, filename string, r io.Reader) (string, error)
	Remove(ref string) error
}

// Service coordinates album operations and their cover images.
type Service interface {
	List(ctx context.Context) ([]models.Album, error)
	Get(ctx context.Context, id int64) (models.Album, error)
	Songs(ctx context.Context, albumID int64) ([]models.Song, error)
	Create(ctx context.Context, in models.AlbumInput, cover *media.Upload) (models.Album, error)
	Update(ctx context.Context, id int64, in models.AlbumInput, cover *media.Upload) (models.Album, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) (bool, error)
}

type service struct {
	store Store
	media MediaStore
}

// New constructs a Service backed by the provided Store and MediaStore.
func New(store Store, mediaStore MediaStore) Service {
	return &service{store: store, media: mediaStore}
}

func (s *service) List(ctx context.Context) ([]models.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListAlbums(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}
	return s.store.GetAlbum(ctx, id)
}

func (s *service) Songs(ctx context.Context, albumID int64) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongsByAlbum(ctx, albumID)
}

func (s *service) Create(ctx context.Context, in models.AlbumInput, cover *media.Upload) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}

	ref, err := s.saveCover(ctx, cover)
	if err != nil {
		return models.Album{}, err
	}
	if ref != "" {
		in.CoverImage = &ref
	}

	album, err := s.store.CreateAlbum(ctx, in)
	if err != nil {
		s.release(ctx, ref)
		return models.Album{}, err
	}
	return album, nil
}

// Update stores a new cover before touching the row and releases the old
// cover only after the row points at the new one.
func (s *service) Update(ctx context.Context, id int64, in models.AlbumInput, cover *media.Upload) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}

	ref, err := s.saveCover(ctx, cover)
	if err != nil {
		return models.Album{}, err
	}
	in.CoverImage = nil
	if ref != "" {
		in.CoverImage = &ref
	}

	album, previous, err := s.store.UpdateAlbum(ctx, id, in)
	if err != nil {
		s.release(ctx, ref)
		return models.Album{}, err
	}
	if previous != nil && *previous != ref {
		s.release(ctx, *previous)
	}
	return album, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cover, err := s.store.DeleteAlbum(ctx, id)
	if err != nil {
		return err
	}
	if cover != nil {
		s.release(ctx, *cover)
	}
	return nil
}

func (s *service) ToggleStatus(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ToggleAlbumStatus(ctx, id)
}

func (s *service) saveCover(ctx context.Context, cover *media.Upload) (string, error) {
	if cover == nil || cover.Body == nil {
		return "", nil
	}
	ref, err := s.media.Save(ctx, media.KindAlbumCover, cover.Filename, cover.Body)
	if err != nil {
		return "", fmt.Errorf("store album cover: %w", err)
	}
	return ref, nil
}

// release removes a blob that is no longer referenced. Failures leave an
// orphaned file and are only logged.
func (s *service) release(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.media.Remove(ref); err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("media_ref", ref).Msg("release album cover")
	}
}
