package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	DisplayName  string    `db:"display_name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	PictureURL   string    `db:"picture_url"`
	IsAdmin      bool      `db:"is_admin"`
	IsVerified   bool      `db:"is_verified"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// NewUser is the input to UserStore.Create.
type NewUser struct {
	Username     string
	DisplayName  string
	Email        string
	PasswordHash string
	PictureURL   string
	IsAdmin      bool
	IsVerified   bool
}

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *UserStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a user. Returns ErrConflict if the username is taken.
func (s *UserStore) Create(ctx context.Context, nu NewUser) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		ID:           uuid.New().String(),
		Username:     nu.Username,
		DisplayName:  nu.DisplayName,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		PictureURL:   nu.PictureURL,
		IsAdmin:      nu.IsAdmin,
		IsVerified:   nu.IsVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, username, display_name, email, password_hash, picture_url, is_admin, is_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), u.ID, u.Username, u.DisplayName, u.Email, u.PasswordHash, u.PictureURL, u.IsAdmin, u.IsVerified, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return nil, conflict(err)
	}
	return u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := sqlx.GetContext(ctx, s.db, &u, s.q(`SELECT * FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetByUsername returns the user with the given username, or ErrNotFound.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := sqlx.GetContext(ctx, s.db, &u, s.q(`SELECT * FROM users WHERE username = ?`), username)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// CountAdmins returns the number of admin users.
func (s *UserStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, s.db, &n, s.q(`SELECT COUNT(*) FROM users WHERE is_admin = ?`), true)
	return n, err
}

// ListByAdmin returns admins (isAdmin true) or regular users, ordered by username.
func (s *UserStore) ListByAdmin(ctx context.Context, isAdmin bool) ([]*User, error) {
	users := []*User{}
	err := sqlx.SelectContext(ctx, s.db, &users, s.q(`
		SELECT * FROM users WHERE is_admin = ? ORDER BY username ASC
	`), isAdmin)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUsername renames a user. Returns ErrConflict if the name is taken.
func (s *UserStore) UpdateUsername(ctx context.Context, id, username string) error {
	return conflict(s.set(ctx, id, "username", username))
}

func (s *UserStore) UpdateDisplayName(ctx context.Context, id, name string) error {
	return s.set(ctx, id, "display_name", name)
}

func (s *UserStore) UpdatePicture(ctx context.Context, id, url string) error {
	return s.set(ctx, id, "picture_url", url)
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return s.set(ctx, id, "password_hash", hash)
}

// UpdateEmail changes the address and clears is_verified until the new
// address is confirmed.
func (s *UserStore) UpdateEmail(ctx context.Context, id, email string) error {
	return execOnly(s.db.ExecContext(ctx, s.q(`
		UPDATE users SET email = ?, is_verified = ?, updated_at = ? WHERE id = ?
	`), email, false, time.Now().UTC(), id))
}

// SetVerified marks the user's current email as confirmed.
func (s *UserStore) SetVerified(ctx context.Context, id string) error {
	return s.set(ctx, id, "is_verified", true)
}

// set updates a single column. column is always a literal from this file.
func (s *UserStore) set(ctx context.Context, id, column string, value any) error {
	return execOnly(s.db.ExecContext(ctx,
		s.q(`UPDATE users SET `+column+` = ?, updated_at = ? WHERE id = ?`),
		value, time.Now().UTC(), id))
}

// Delete removes a user and everything they own.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	children := []string{
		`DELETE FROM content_fields WHERE post_id IN (SELECT id FROM posts WHERE user_id = ?)`,
		`DELETE FROM posts WHERE user_id = ?`,
		`DELETE FROM api_tokens WHERE user_id = ?`,
		`DELETE FROM files WHERE user_id = ?`,
		`DELETE FROM email_tokens WHERE user_id = ?`,
		`DELETE FROM user_keys WHERE issuer_id = ?`,
	}
	for _, stmt := range children {
		if _, err := s.db.ExecContext(ctx, s.q(stmt), id); err != nil {
			return err
		}
	}
	return affectedOne(s.db.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = ?`), id))
}
