package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/cleo/internal/store"
)

const (
	// APITokenPrefix marks tokens returned by /token/create.
	APITokenPrefix = "cleo_"
	// EmailTokenPrefix marks tokens mailed in verification links.
	EmailTokenPrefix = "cev_"
)

// TokenRecord represents a row in the api_tokens table.
type TokenRecord struct {
	ID         string       `db:"id"`
	UserID     string       `db:"user_id"`
	TokenHash  string       `db:"token_hash"`
	CreatedAt  time.Time    `db:"created_at"`
	LastUsedAt sql.NullTime `db:"last_used_at"`
}

// TokenStore defines operations for API token management.
type TokenStore interface {
	Create(ctx context.Context, userID, tokenHash string) (*TokenRecord, error)
	GetByHash(ctx context.Context, hash string) (*TokenRecord, error)
	Delete(ctx context.Context, id, userID string) error
	UpdateLastUsed(ctx context.Context, id string) error
}

// SQLTokenStore is the sqlx-backed implementation of TokenStore.
type SQLTokenStore struct {
	db store.DB
}

// NewSQLTokenStore creates a new SQLTokenStore.
func NewSQLTokenStore(db store.DB) *SQLTokenStore {
	return &SQLTokenStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *SQLTokenStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a new API token record.
func (s *SQLTokenStore) Create(ctx context.Context, userID, tokenHash string) (*TokenRecord, error) {
	rec := &TokenRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO api_tokens (id, user_id, token_hash, created_at)
		VALUES (?, ?, ?, ?)
	`), rec.ID, rec.UserID, rec.TokenHash, rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByHash returns the token record matching the given hash, or store.ErrNotFound.
func (s *SQLTokenStore) GetByHash(ctx context.Context, hash string) (*TokenRecord, error) {
	var rec TokenRecord
	err := sqlx.GetContext(ctx, s.db, &rec, s.q(`SELECT * FROM api_tokens WHERE token_hash = ?`), hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes a token. Returns store.ErrNotFound if the token does not exist
// or is not owned by the given user.
func (s *SQLTokenStore) Delete(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM api_tokens WHERE id = ? AND user_id = ?
	`), id, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateLastUsed updates the last_used_at timestamp for the given token.
func (s *SQLTokenStore) UpdateLastUsed(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE api_tokens SET last_used_at = ? WHERE id = ?
	`), now, id)
	return err
}

// GenerateToken creates a new API token with the "cleo_" prefix.
// It returns the plaintext token, its SHA-256 hash, and any error.
func GenerateToken() (plaintext, hash string, err error) {
	return generate(APITokenPrefix)
}

// GenerateEmailToken creates a single-use email verification token.
func GenerateEmailToken() (plaintext, hash string, err error) {
	return generate(EmailTokenPrefix)
}

// generate returns prefix + base62-encoded 32 cryptographically random bytes,
// and the hex-encoded SHA-256 of that plaintext.
func generate(prefix string) (plaintext, hash string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return
	}

	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	encoded := make([]byte, 0, 44)
	n := new(big.Int).SetBytes(b)
	base := big.NewInt(62)
	mod := new(big.Int)
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		encoded = append(encoded, alphabet[mod.Int64()])
	}
	// Reverse to get most-significant digit first.
	for i, j := 0, len(encoded)-1; i < j; i, j = i+1, j-1 {
		encoded[i], encoded[j] = encoded[j], encoded[i]
	}

	plaintext = prefix + string(encoded)
	hash = HashToken(plaintext)
	return
}

// HashToken returns the hex-encoded SHA-256 hash of a plaintext token.
func HashToken(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}
