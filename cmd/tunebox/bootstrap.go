package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tunebox/internal/logging"
	"tunebox/internal/models"
	"tunebox/internal/store"
)

const (
	demoEmail    = "demo@tunebox.local"
	demoPassword = "demo123"
	demoArtist   = "The Demo Tapes"
	demoAlbum    = "First Light"
)

// bootstrapDemoData seeds a demo listener, artist and album. Every step is
// skipped when its row already exists, so restarts are harmless.
func bootstrapDemoData(ctx context.Context, dataStore *store.Store) error {
	if err := ensureDemoUser(ctx, dataStore); err != nil {
		return err
	}
	artist, err := ensureDemoArtist(ctx, dataStore)
	if err != nil {
		return err
	}
	return ensureDemoAlbum(ctx, dataStore, artist.ID)
}

func ensureDemoUser(ctx context.Context, dataStore *store.Store) error {
	_, err := dataStore.CreateUser(ctx, models.UserInput{
		Username: "demo",
		Email:    demoEmail,
		Password: demoPassword,
	})
	if err != nil && !errors.Is(err, store.ErrUserExists) {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}
	if err == nil {
		logging.WithContext(ctx).Info().Str("email", demoEmail).Msg("demo user created")
	}
	return nil
}

func ensureDemoArtist(ctx context.Context, dataStore *store.Store) (models.Artist, error) {
	artists, err := dataStore.ListArtists(ctx)
	if err != nil {
		return models.Artist{}, fmt.Errorf("bootstrap demo artist: %w", err)
	}
	for _, artist := range artists {
		if strings.EqualFold(artist.Name, demoArtist) {
			return artist, nil
		}
	}

	artist, err := dataStore.CreateArtist(ctx, models.ArtistInput{Name: demoArtist})
	if err != nil {
		return models.Artist{}, fmt.Errorf("bootstrap demo artist: %w", err)
	}
	return artist, nil
}

func ensureDemoAlbum(ctx context.Context, dataStore *store.Store, artistID int64) error {
	albums, err := dataStore.ListAlbums(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap demo album: %w", err)
	}
	for _, album := range albums {
		if album.ArtistID == artistID && strings.EqualFold(album.Name, demoAlbum) {
			return nil
		}
	}

	if _, err := dataStore.CreateAlbum(ctx, models.AlbumInput{
		Name:      demoAlbum,
		CreatedAt: time.Date(2023, time.July, 22, 0, 0, 0, 0, time.UTC),
		ArtistID:  artistID,
	}); err != nil {
		return fmt.Errorf("bootstrap demo album: %w", err)
	}
	return nil
}
