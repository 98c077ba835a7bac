package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// EmailToken is a pending verification of Email for a user. Only the hash
// of the emailed token is stored.
type EmailToken struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

type EmailTokenStore struct {
	db DB
}

func NewEmailTokenStore(db DB) *EmailTokenStore {
	return &EmailTokenStore{db: db}
}

func (s *EmailTokenStore) q(query string) string { return s.db.Rebind(query) }

func (s *EmailTokenStore) Create(ctx context.Context, userID, tokenHash, email string) (*EmailToken, error) {
	et := &EmailToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: tokenHash,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO email_tokens (id, user_id, token_hash, email, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), et.ID, et.UserID, et.TokenHash, et.Email, et.CreatedAt)
	if err != nil {
		return nil, err
	}
	return et, nil
}

func (s *EmailTokenStore) GetByHash(ctx context.Context, hash string) (*EmailToken, error) {
	var et EmailToken
	err := sqlx.GetContext(ctx, s.db, &et, s.q(`SELECT * FROM email_tokens WHERE token_hash = ?`), hash)
	if err != nil {
		return nil, notFound(err)
	}
	return &et, nil
}

// Delete removes a token once it has been redeemed.
func (s *EmailTokenStore) Delete(ctx context.Context, id string) error {
	return affectedOne(s.db.ExecContext(ctx, s.q(`DELETE FROM email_tokens WHERE id = ?`), id))
}

// DeleteByUser drops every outstanding token for a user, used when a new
// address supersedes the old one.
func (s *EmailTokenStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM email_tokens WHERE user_id = ?`), userID)
	return err
}
