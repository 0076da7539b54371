package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tunebox/internal/app/payments"
	"tunebox/internal/logging"
	"tunebox/internal/media"
	"tunebox/internal/models"
	"tunebox/internal/payment"
	"tunebox/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id int64) (models.User, error)
	Create(ctx context.Context, in models.UserInput) (models.User, error)
	Update(ctx context.Context, id int64, in models.UserInput) (models.User, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	ChangePassword(ctx context.Context, id int64, current, replacement string) error
}

// ArtistService describes artist catalogue workflows.
type ArtistService interface {
	List(ctx context.Context) ([]models.Artist, error)
	Get(ctx context.Context, id int64) (models.Artist, error)
	Create(ctx context.Context, in models.ArtistInput) (models.Artist, error)
	Update(ctx context.Context, id int64, in models.ArtistInput) (models.Artist, error)
	ToggleStatus(ctx context.Context, id int64) (models.Artist, error)
}

// AlbumService exposes album-specific workflows.
type AlbumService interface {
	List(ctx context.Context) ([]models.Album, error)
	Get(ctx context.Context, id int64) (models.Album, error)
	Songs(ctx context.Context, albumID int64) ([]models.Song, error)
	Create(ctx context.Context, in models.AlbumInput, cover *media.Upload) (models.Album, error)
	Update(ctx context.Context, id int64, in models.AlbumInput, cover *media.Upload) (models.Album, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) (bool, error)
}

// SongService coordinates track-level operations.
type SongService interface {
	List(ctx context.Context, filter models.SongFilter) ([]models.Song, error)
	Get(ctx context.Context, id int64) (models.Song, error)
	Create(ctx context.Context, in models.SongInput, file *media.Upload) (models.Song, error)
	Update(ctx context.Context, id int64, in models.SongInput, file *media.Upload) (models.Song, error)
	Delete(ctx context.Context, id int64) error
	Play(ctx context.Context, id int64) (int64, error)
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	List(ctx context.Context, filter models.PlaylistFilter) ([]models.Playlist, error)
	Get(ctx context.Context, id int64) (models.Playlist, error)
	Create(ctx context.Context, in models.PlaylistInput, cover *media.Upload) (models.Playlist, error)
	Update(ctx context.Context, id int64, in models.PlaylistInput, cover *media.Upload) (models.Playlist, error)
	Delete(ctx context.Context, id int64) error
	Songs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error)
	AddSong(ctx context.Context, playlistID, songID int64) (models.PlaylistSong, error)
	RemoveSong(ctx context.Context, playlistID, songID int64) error
}

// MessageService exposes direct messaging.
type MessageService interface {
	Send(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error)
	Conversation(ctx context.Context, userA, userB int64) ([]models.Message, error)
}

// PaymentService runs the premium checkout.
type PaymentService interface {
	Initiate(ctx context.Context, userID int64, clientIP string) (payments.Checkout, error)
	Confirm(ctx context.Context, params map[string]string) (payments.Confirmation, error)
}

// StatsService serves dashboard aggregates.
type StatsService interface {
	Totals(ctx context.Context) (models.Totals, error)
	UsersByDate(ctx context.Context) ([]models.DailyCount, error)
}

// MediaFiles resolves stored media references to files on disk.
type MediaFiles interface {
	Path(ref string) (string, error)
}

// Services groups the collaborators a Server dispatches to.
type Services struct {
	Users     UserService
	Artists   ArtistService
	Albums    AlbumService
	Songs     SongService
	Playlists PlaylistService
	Messages  MessageService
	Payments  PaymentService
	Stats     StatsService
	// Search serves catalog-wide lookups; nil leaves the route unmounted.
	Search http.Handler
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	artists   ArtistService
	albums    AlbumService
	songs     SongService
	playlists PlaylistService
	messages  MessageService
	payments  PaymentService
	stats     StatsService
	search    http.Handler
	media     MediaFiles

	maxUploadBytes int64
}

// New configures a Server. maxUploadBytes bounds multipart request bodies.
func New(svc Services, files MediaFiles, maxUploadBytes int64) *Server {
	return &Server{
		users:          svc.Users,
		artists:        svc.Artists,
		albums:         svc.Albums,
		songs:          svc.Songs,
		playlists:      svc.Playlists,
		messages:       svc.Messages,
		payments:       svc.Payments,
		stats:          svc.Stats,
		search:         svc.Search,
		media:          files,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/media/{kind}/{name}", s.serveMedia).Methods(http.MethodGet, http.MethodHead)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/songs", s.listSongs).Methods(http.MethodGet)
	api.HandleFunc("/songs", s.createSong).Methods(http.MethodPost)
	api.HandleFunc("/songs/{id}", s.getSong).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id}", s.updateSong).Methods(http.MethodPut)
	api.HandleFunc("/songs/{id}", s.deleteSong).Methods(http.MethodDelete)
	api.HandleFunc("/songs/{id}/play", s.playSong).Methods(http.MethodPost)

	api.HandleFunc("/albums", s.listAlbums).Methods(http.MethodGet)
	api.HandleFunc("/albums", s.createAlbum).Methods(http.MethodPost)
	api.HandleFunc("/albums/{id}", s.getAlbum).Methods(http.MethodGet)
	api.HandleFunc("/albums/{id}", s.updateAlbum).Methods(http.MethodPut)
	api.HandleFunc("/albums/{id}", s.deleteAlbum).Methods(http.MethodDelete)
	api.HandleFunc("/albums/{id}/songs", s.albumSongs).Methods(http.MethodGet)
	api.HandleFunc("/albums/{id}/status", s.toggleAlbum).Methods(http.MethodPut)

	api.HandleFunc("/artists", s.listArtists).Methods(http.MethodGet)
	api.HandleFunc("/artists", s.createArtist).Methods(http.MethodPost)
	api.HandleFunc("/artists/{id}", s.getArtist).Methods(http.MethodGet)
	api.HandleFunc("/artists/{id}", s.updateArtist).Methods(http.MethodPut)
	api.HandleFunc("/artists/{id}/status", s.toggleArtist).Methods(http.MethodPut)

	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", s.getUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.updateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", s.deleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/status", s.toggleUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}/password", s.changePassword).Methods(http.MethodPost)

	api.HandleFunc("/playlists", s.listPlaylists).Methods(http.MethodGet)
	api.HandleFunc("/playlists", s.createPlaylist).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id}", s.getPlaylist).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id}", s.updatePlaylist).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id}", s.deletePlaylist).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id}/songs", s.playlistSongs).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id}/songs", s.addPlaylistSong).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id}/songs/{songID}", s.removePlaylistSong).Methods(http.MethodDelete)

	api.HandleFunc("/messages", s.sendMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages", s.conversation).Methods(http.MethodGet)

	api.HandleFunc("/payments", s.initiatePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/return", s.paymentReturn).Methods(http.MethodGet)

	api.HandleFunc("/stats", s.totals).Methods(http.MethodGet)
	api.HandleFunc("/stats/users-by-date", s.usersByDate).Methods(http.MethodGet)

	if s.search != nil {
		api.Handle("/search", s.search).Methods(http.MethodGet)
	}

	return router
}

func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	path, err := s.media.Path(vars["kind"] + "/" + vars["name"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "media not found"})
		return
	}
	http.ServeFile(w, r, path)
}

type errorResponse struct {
	Error string `json:"error"`
}

const internalErrorMessage = "internal server error"

// statusFor maps the error taxonomy onto HTTP statuses. Signature and
// internal failures get a fixed message so callback callers learn nothing
// about why they were rejected.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		return http.StatusBadRequest, "invalid payment signature"
	case errors.Is(err, payment.ErrInvalidTxnRef):
		return http.StatusBadRequest, "invalid payment callback"
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, store.ErrAccountDisabled):
		return http.StatusForbidden, err.Error()
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalid("invalid JSON payload")
	}
	return nil
}

func invalid(message string) error {
	return fmt.Errorf("%w: %s", store.ErrInvalidInput, message)
}

// pathID parses a positive integer mux variable.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("invalid " + name + " parameter")
	}
	return id, nil
}
