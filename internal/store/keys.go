package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrKeyInvalid is returned when a signup key is unknown, already used, or
// was issued for a different username.
var ErrKeyInvalid = errors.New("user key is invalid")

// Key is a signup invitation issued by an admin for one username.
type Key struct {
	ID        string    `db:"id"`
	IssuerID  string    `db:"issuer_id"`
	Value     string    `db:"user_key"`
	Type      string    `db:"key_type"`
	Username  string    `db:"username"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
}

// IsAdmin reports whether signing up with k produces an admin account.
func (k *Key) IsAdmin() bool {
	return k.Type == KeyTypeAdmin
}

type KeyStore struct {
	db DB
}

func NewKeyStore(db DB) *KeyStore {
	return &KeyStore{db: db}
}

func (s *KeyStore) q(query string) string { return s.db.Rebind(query) }

// Create stores a freshly generated key. keyType must already be normalized.
func (s *KeyStore) Create(ctx context.Context, issuerID, value, keyType, username string) (*Key, error) {
	k := &Key{
		ID:        uuid.New().String(),
		IssuerID:  issuerID,
		Value:     value,
		Type:      keyType,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO user_keys (id, issuer_id, user_key, key_type, username, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), k.ID, k.IssuerID, k.Value, k.Type, k.Username, false, k.CreatedAt)
	if err != nil {
		return nil, conflict(err)
	}
	return k, nil
}

// GetByValue returns the key with the given key string, or ErrNotFound.
func (s *KeyStore) GetByValue(ctx context.Context, value string) (*Key, error) {
	var k Key
	err := sqlx.GetContext(ctx, s.db, &k, s.q(`SELECT * FROM user_keys WHERE user_key = ?`), value)
	if err != nil {
		return nil, notFound(err)
	}
	return &k, nil
}

// ListByIssuer returns the keys an admin has issued, newest first.
func (s *KeyStore) ListByIssuer(ctx context.Context, issuerID string) ([]*Key, error) {
	keys := []*Key{}
	err := sqlx.SelectContext(ctx, s.db, &keys, s.q(`
		SELECT * FROM user_keys WHERE issuer_id = ? ORDER BY created_at DESC, id ASC
	`), issuerID)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Delete removes a key whoever issued it. Returns ErrNotFound if no key has id.
func (s *KeyStore) Delete(ctx context.Context, id string) error {
	return affectedOne(s.db.ExecContext(ctx, s.q(`
		DELETE FROM user_keys WHERE id = ?
	`), id))
}

// Consume validates value against username and marks it used. The
// conditional UPDATE makes a key single use even under concurrent signups.
func (s *KeyStore) Consume(ctx context.Context, value, username string) (*Key, error) {
	k, err := s.GetByValue(ctx, value)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrKeyInvalid
	}
	if err != nil {
		return nil, err
	}
	if k.Used || k.Username != username {
		return nil, ErrKeyInvalid
	}
	err = affectedOne(s.db.ExecContext(ctx, s.q(`
		UPDATE user_keys SET used = ? WHERE id = ? AND used = ?
	`), true, k.ID, false))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrKeyInvalid
	}
	if err != nil {
		return nil, err
	}
	k.Used = true
	return k, nil
}
