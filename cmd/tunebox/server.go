package main

import (
	"net/http"

	"tunebox/internal/app/albums"
	"tunebox/internal/app/artists"
	"tunebox/internal/app/messages"
	"tunebox/internal/app/payments"
	"tunebox/internal/app/playlists"
	"tunebox/internal/app/songs"
	"tunebox/internal/app/stats"
	"tunebox/internal/app/users"
	"tunebox/internal/config"
	"tunebox/internal/httpapi"
	"tunebox/internal/media"
	"tunebox/internal/middleware"
	"tunebox/internal/payment"
	"tunebox/internal/search"
	"tunebox/internal/store"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store, files *media.LocalStorage, gateway *payment.Gateway) http.Handler {
	api := httpapi.New(httpapi.Services{
		Users:     users.New(dataStore, files),
		Artists:   artists.New(dataStore),
		Albums:    albums.New(dataStore, files),
		Songs:     songs.New(dataStore, files),
		Playlists: playlists.New(dataStore, files),
		Messages:  messages.New(dataStore),
		Payments:  payments.New(dataStore, gateway),
		Stats:     stats.New(dataStore),
		Search:    search.NewHandler(search.NewPGStore(dataStore.DB())),
	}, files, cfg.Media.MaxUploadBytes())

	// CORS sits outside the router so preflight requests never reach method matching.
	return chain(api.Routes(),
		middleware.Recovery(),
		middleware.RequestLogging(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
}

// chain wraps h so the last middleware listed runs first.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for _, mw := range mws {
		h = mw(h)
	}
	return h
}
