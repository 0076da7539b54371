package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds. Every error returned by the store that is not a storage
// failure wraps exactly one of these, so callers can branch with errors.Is.
var (
	// ErrInvalidInput signals missing or malformed required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound signals that a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a unique constraint collision.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates a login failure. It deliberately does
	// not say whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled indicates valid credentials on an inactive account.
	ErrAccountDisabled = errors.New("account is disabled")
)

var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrArtistNotFound   = fmt.Errorf("artist %w", ErrNotFound)
	ErrAlbumNotFound    = fmt.Errorf("album %w", ErrNotFound)
	ErrSongNotFound     = fmt.Errorf("song %w", ErrNotFound)
	ErrPlaylistNotFound = fmt.Errorf("playlist %w", ErrNotFound)
	// ErrSongNotInPlaylist is returned when removing a membership that does not exist.
	ErrSongNotInPlaylist = fmt.Errorf("song in playlist %w", ErrNotFound)

	// ErrUserExists signals the username or email is already taken.
	ErrUserExists = fmt.Errorf("username or email already taken: %w", ErrConflict)
	// ErrSongAlreadyInPlaylist rejects duplicate memberships.
	ErrSongAlreadyInPlaylist = fmt.Errorf("song already in playlist: %w", ErrConflict)
)

const (
	statusInactive = 0
	statusActive   = 1
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// constraintName reports which constraint a Postgres error refers to.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// statusValue and statusActiveFrom are the only places the 0/1 storage
// encoding of status flags is translated.
func statusValue(active bool) int {
	if active {
		return statusActive
	}
	return statusInactive
}

func statusActiveFrom(v int) bool {
	return v == statusActive
}

func nullIfEmpty(value *string) any {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term as a literal
// substring. Backslash is the Postgres default LIKE escape.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
