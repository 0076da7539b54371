package playlists

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunebox/internal/media"
	"tunebox/internal/models"
	"tunebox/internal/store"
)

type recordingMedia struct {
	saved     []string
	removed   []string
	saveErr   error
	removeErr error
}

func (m *recordingMedia) Save(_ context.Context, kind media.Kind, filename string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	_, _ = io.Copy(io.Discard, r)
	ref := string(kind) + "/" + filename
	m.saved = append(m.saved, ref)
	return ref, nil
}

func (m *recordingMedia) Remove(ref string) error {
	m.removed = append(m.removed, ref)
	return m.removeErr
}

type coverStore struct {
	Store
	cover     *string
	createErr error
	updateErr error
	deleteErr error
	gotCover  *string
}

func (s *coverStore) CreatePlaylist(_ context.Context, in models.PlaylistInput) (models.Playlist, error) {
	s.gotCover = in.CoverImage
	if s.createErr != nil {
		return models.Playlist{}, s.createErr
	}
	return models.Playlist{ID: 3, Name: in.Name, UserID: in.UserID, CoverImage: in.CoverImage}, nil
}

func (s *coverStore) UpdatePlaylist(_ context.Context, id int64, in models.PlaylistInput) (models.Playlist, *string, error) {
	s.gotCover = in.CoverImage
	if s.updateErr != nil {
		return models.Playlist{}, nil, s.updateErr
	}
	playlist := models.Playlist{ID: id, Name: in.Name, CoverImage: s.cover}
	if in.CoverImage == nil {
		return playlist, nil, nil
	}
	previous := s.cover
	playlist.CoverImage = in.CoverImage
	return playlist, previous, nil
}

func (s *coverStore) DeletePlaylist(_ context.Context, _ int64) (*string, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return s.cover, nil
}

func ptr(s string) *string { return &s }

func upload(name string) *media.Upload {
	return &media.Upload{Filename: name, Body: strings.NewReader("img")}
}

func TestCreateStoresCover(t *testing.T) {
	st := &coverStore{}
	m := &recordingMedia{}
	svc := New(st, m)

	playlist, err := svc.Create(context.Background(), models.PlaylistInput{Name: "Mix", UserID: 7}, upload("mix.jpg"))
	require.NoError(t, err)

	require.NotNil(t, playlist.CoverImage)
	assert.Equal(t, "playlists/mix.jpg", *playlist.CoverImage)
	assert.Empty(t, m.removed)
}

func TestCreateFailureReleasesCover(t *testing.T) {
	st := &coverStore{createErr: store.ErrUserNotFound}
	m := &recordingMedia{}
	svc := New(st, m)

	_, err := svc.Create(context.Background(), models.PlaylistInput{Name: "Mix", UserID: 99}, upload("mix.jpg"))
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.Equal(t, []string{"playlists/mix.jpg"}, m.removed)
}

func TestCreateWithoutCover(t *testing.T) {
	st := &coverStore{}
	m := &recordingMedia{}
	svc := New(st, m)

	playlist, err := svc.Create(context.Background(), models.PlaylistInput{Name: "Mix", UserID: 7}, nil)
	require.NoError(t, err)

	assert.Nil(t, playlist.CoverImage)
	assert.Empty(t, m.saved)
}

func TestUpdateReplacesCover(t *testing.T) {
	st := &coverStore{cover: ptr("playlists/old.jpg")}
	m := &recordingMedia{}
	svc := New(st, m)

	playlist, err := svc.Update(context.Background(), 3, models.PlaylistInput{Name: "Mix"}, upload("new.jpg"))
	require.NoError(t, err)

	require.NotNil(t, playlist.CoverImage)
	assert.Equal(t, "playlists/new.jpg", *playlist.CoverImage)
	assert.Equal(t, []string{"playlists/old.jpg"}, m.removed)
}

func TestUpdateIgnoresClientSuppliedCover(t *testing.T) {
	st := &coverStore{cover: ptr("playlists/old.jpg")}
	m := &recordingMedia{}
	svc := New(st, m)

	_, err := svc.Update(context.Background(), 3, models.PlaylistInput{Name: "Mix", CoverImage: ptr("playlists/other.jpg")}, nil)
	require.NoError(t, err)

	assert.Nil(t, st.gotCover)
	assert.Empty(t, m.removed)
}

func TestUpdateFailureReleasesNewCover(t *testing.T) {
	st := &coverStore{cover: ptr("playlists/old.jpg"), updateErr: errors.New("tx aborted")}
	m := &recordingMedia{}
	svc := New(st, m)

	_, err := svc.Update(context.Background(), 3, models.PlaylistInput{Name: "Mix"}, upload("new.jpg"))
	require.Error(t, err)
	assert.Equal(t, []string{"playlists/new.jpg"}, m.removed)
}

func TestUpdateSaveFailureSkipsStore(t *testing.T) {
	st := &coverStore{cover: ptr("playlists/old.jpg")}
	m := &recordingMedia{saveErr: errors.New("disk full")}
	svc := New(st, m)

	_, err := svc.Update(context.Background(), 3, models.PlaylistInput{Name: "Mix"}, upload("new.jpg"))
	require.Error(t, err)
	assert.Nil(t, st.gotCover)
	assert.Empty(t, m.removed)
}

func TestDeleteReleasesCover(t *testing.T) {
	st := &coverStore{cover: ptr("playlists/old.jpg")}
	m := &recordingMedia{removeErr: errors.New("permission denied")}
	svc := New(st, m)

	require.NoError(t, svc.Delete(context.Background(), 3))
	assert.Equal(t, []string{"playlists/old.jpg"}, m.removed)
}

func TestDeleteMissingPlaylist(t *testing.T) {
	st := &coverStore{deleteErr: store.ErrPlaylistNotFound}
	m := &recordingMedia{}
	svc := New(st, m)

	assert.ErrorIs(t, svc.Delete(context.Background(), 3), store.ErrPlaylistNotFound)
	assert.Empty(t, m.removed)
}
