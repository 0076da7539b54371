package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunebox/internal/store"
)

type recordingMedia struct {
	removed   []string
	removeErr error
}

func (m *recordingMedia) Remove(ref string) error {
	m.removed = append(m.removed, ref)
	return m.removeErr
}

type deleteStore struct {
	Store
	covers []string
	err    error
}

func (s *deleteStore) DeleteUser(_ context.Context, _ int64) ([]string, error) {
	return s.covers, s.err
}

func TestDeleteReleasesPlaylistCovers(t *testing.T) {
	m := &recordingMedia{}
	svc := New(&deleteStore{covers: []string{"playlists/a.jpg", "playlists/b.jpg"}}, m)

	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.Equal(t, []string{"playlists/a.jpg", "playlists/b.jpg"}, m.removed)
}

func TestDeleteSurvivesRemovalFailure(t *testing.T) {
	m := &recordingMedia{removeErr: errors.New("permission denied")}
	svc := New(&deleteStore{covers: []string{"playlists/a.jpg", "playlists/b.jpg"}}, m)

	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.Len(t, m.removed, 2)
}

func TestDeleteMissingUserReleasesNothing(t *testing.T) {
	m := &recordingMedia{}
	svc := New(&deleteStore{err: store.ErrUserNotFound}, m)

	err := svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.Empty(t, m.removed)
}

func TestDeleteHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &recordingMedia{}
	svc := New(&deleteStore{covers: []string{"playlists/a.jpg"}}, m)

	assert.ErrorIs(t, svc.Delete(ctx, 7), context.Canceled)
	assert.Empty(t, m.removed)
}
