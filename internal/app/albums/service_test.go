package albums

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
)

type recordingMedia struct {
	removed   []string
	removeErr error
}

func (m *recordingMedia) Save(_ context.Context, kind media.Kind, filename string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	return string(kind) + "/" + filename, nil
}

func (m *recordingMedia) Remove(ref string) error {
	m.removed = append(m.removed, ref)
	return m.removeErr
}

type coverStore struct {
	Store
	cover     *string
	updateErr error
	gotCover  *string
}

func (s *coverStore) UpdateAlbum(_ context.Context, id int64, in models.AlbumInput) (models.Album, *string, error) {
	s.gotCover = in.CoverImage
	if s.updateErr != nil {
		return models.Album{}, nil, s.updateErr
	}
	album := models.Album{ID: id, Name: in.Name, CoverImage: s.cover}
	if in.CoverImage == nil {
		return album, nil, nil
	}
	previous := s.cover
	album.CoverImage = in.CoverImage
	return album, previous, nil
}

func (s *coverStore) DeleteAlbum(_ context.Context, _ int64) (*string, error) {
	return s.cover, nil
}

func ptr(s string) *string { return &s }

func TestUpdateReplacesCover(t *testing.T) {
	st := &coverStore{cover: ptr("albums/old.jpg")}
	m := &recordingMedia{}
	svc := New(st, m)

	album, err := svc.Update(context.Background(), 1, models.AlbumInput{Name: "Alb1"},
		&media.Upload{Filename: "new.jpg", Body: strings.NewReader("img")})
	require.NoError(t, err)

	require.NotNil(t, album.CoverImage)
	assert.Equal(t, "albums/new.jpg", *album.CoverImage)
	assert.Equal(t, []string{"albums/old.jpg"}, m.removed)
}

func TestUpdateIgnoresClientSuppliedCover(t *testing.T) {
	st := &coverStore{cover: ptr("albums/old.jpg")}
	m := &recordingMedia{}
	svc := New(st, m)

	_, err := svc.Update(context.Background(), 1, models.AlbumInput{Name: "Alb1", CoverImage: ptr("albums/other.jpg")}, nil)
	require.NoError(t, err)

	assert.Nil(t, st.gotCover, "cover only changes through an upload")
	assert.Empty(t, m.removed)
}

func TestUpdateFailureReleasesNewCover(t *testing.T) {
	st := &coverStore{cover: ptr("albums/old.jpg"), updateErr: errors.New("tx aborted")}
	m := &recordingMedia{}
	svc := New(st, m)

	_, err := svc.Update(context.Background(), 1, models.AlbumInput{Name: "Alb1"},
		&media.Upload{Filename: "new.jpg", Body: strings.NewReader("img")})
	require.Error(t, err)
	assert.Equal(t, []string{"albums/new.jpg"}, m.removed)
}

func TestDeleteSurvivesRemovalFailure(t *testing.T) {
	st := &coverStore{cover: ptr("albums/old.jpg")}
	m := &recordingMedia{removeErr: errors.New("permission denied")}
	svc := New(st, m)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, []string{"albums/old.jpg"}, m.removed)
}
