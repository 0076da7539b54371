package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"tunebox/internal/models"
)

// MinPasswordLength is the shortest credential accepted on create or change.
const MinPasswordLength = 6

// dummyPasswordHash keeps the cost of a failed lookup close to a failed compare.
var dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")

const userColumns = `id, username, email, created_at, status, is_premium`

func validateUser(in models.UserInput, requirePassword bool) error {
	if strings.TrimSpace(in.Username) == "" {
		return invalidf("username is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Username)) > 50 {
		return invalidf("username must be at most 50 characters")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return invalidf("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil || len(email) > 100 {
		return invalidf("email is malformed")
	}
	if requirePassword {
		if err := validatePassword(in.Password); err != nil {
			return err
		}
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalidf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var (
		user   models.User
		status int
	)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &status, &user.IsPremium); err != nil {
		return models.User{}, err
	}
	user.Active = statusActiveFrom(status)
	return user, nil
}

// ListUsers returns every account ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// GetUser loads one account.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	return getUser(ctx, s.db, id, false)
}

func getUser(ctx context.Context, q queryRower, id int64, forUpdate bool) (models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	user, err := scanUser(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateUser registers an account, storing only a bcrypt hash of the password.
func (s *Store) CreateUser(ctx context.Context, in models.UserInput) (models.User, error) {
	if err := validateUser(in, true); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	premium := false
	if in.IsPremium != nil {
		premium = *in.IsPremium
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, status, is_premium)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		strings.TrimSpace(in.Username), strings.TrimSpace(in.Email), string(hash), statusValue(active), premium))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// UpdateUser replaces the profile fields of an account. Omitted flags keep
// their stored value; the password is never touched here.
func (s *Store) UpdateUser(ctx context.Context, id int64, in models.UserInput) (models.User, error) {
	if err := validateUser(in, false); err != nil {
		return models.User{}, err
	}

	var status, premium any
	if in.Active != nil {
		status = statusValue(*in.Active)
	}
	if in.IsPremium != nil {
		premium = *in.IsPremium
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users
		SET username = $1,
		    email = $2,
		    status = COALESCE($3, status),
		    is_premium = COALESCE($4, is_premium)
		WHERE id = $5
		RETURNING `+userColumns,
		strings.TrimSpace(in.Username), strings.TrimSpace(in.Email), status, premium, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser hard-deletes an account together with its playlists; messages
// and ledger rows cascade. The cover references of the removed playlists are
// returned so the caller can release the files.
func (s *Store) DeleteUser(ctx context.Context, id int64) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, `
		DELETE FROM playlists
		WHERE user_id = $1
		RETURNING cover_image
	`, id)
	if err != nil {
		return nil, fmt.Errorf("delete user playlists: %w", err)
	}
	covers := make([]string, 0)
	for rows.Next() {
		var cover sql.NullString
		if err := rows.Scan(&cover); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist cover: %w", err)
		}
		if cover.Valid && cover.String != "" {
			covers = append(covers, cover.String)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate playlist covers: %w", err)
	}
	rows.Close()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return covers, nil
}

// ToggleUserStatus flips the active flag and returns the new value.
func (s *Store) ToggleUserStatus(ctx context.Context, id int64) (models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users
		SET status = 1 - status
		WHERE id = $1
		RETURNING `+userColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("toggle user status: %w", err)
	}
	return user, nil
}

// Authenticate checks an email/password pair. Unknown email and wrong
// password both yield ErrInvalidCredentials; an inactive account with valid
// credentials yields ErrAccountDisabled.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var (
		user   models.User
		status int
		hash   []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, created_at, status, is_premium, password_hash
		FROM users
		WHERE email = $1
	`, strings.TrimSpace(email)).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &status, &user.IsPremium, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	user.Active = statusActiveFrom(status)
	if !user.Active {
		return models.User{}, ErrAccountDisabled
	}
	return user, nil
}

// ChangePassword replaces the credential after verifying the current one.
func (s *Store) ChangePassword(ctx context.Context, id int64, current, replacement string) error {
	if current == "" {
		return invalidf("current password is required")
	}
	if err := validatePassword(replacement); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var hash []byte
	err = tx.QueryRowContext(ctx, `
		SELECT password_hash
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup password: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(replacement), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $1
		WHERE id = $2
	`, string(newHash), id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}
