package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Field is an extra content field: a key/value pair attached to a post.
type Field struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	Key       string    `db:"field_key"`
	Value     string    `db:"field_value"`
	CreatedAt time.Time `db:"created_at"`
}

type FieldStore struct {
	db DB
}

func NewFieldStore(db DB) *FieldStore {
	return &FieldStore{db: db}
}

func (s *FieldStore) q(query string) string { return s.db.Rebind(query) }

func (s *FieldStore) Create(ctx context.Context, postID, key, value string) (*Field, error) {
	f := &Field{
		ID:        uuid.New().String(),
		PostID:    postID,
		Key:       key,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO content_fields (id, post_id, field_key, field_value, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), f.ID, f.PostID, f.Key, f.Value, f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Get returns the field with id only if it belongs to postID.
func (s *FieldStore) Get(ctx context.Context, postID, id string) (*Field, error) {
	var f Field
	err := sqlx.GetContext(ctx, s.db, &f, s.q(`
		SELECT * FROM content_fields WHERE id = ? AND post_id = ?
	`), id, postID)
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// ListByPost returns a post's fields in creation order.
func (s *FieldStore) ListByPost(ctx context.Context, postID string) ([]*Field, error) {
	fields := []*Field{}
	err := sqlx.SelectContext(ctx, s.db, &fields, s.q(`
		SELECT * FROM content_fields WHERE post_id = ? ORDER BY created_at ASC, id ASC
	`), postID)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// ListByPosts returns the fields of every post in postIDs, grouped by post id.
func (s *FieldStore) ListByPosts(ctx context.Context, postIDs []string) (map[string][]*Field, error) {
	out := make(map[string][]*Field, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`
		SELECT * FROM content_fields WHERE post_id IN (?) ORDER BY created_at ASC, id ASC
	`, postIDs)
	if err != nil {
		return nil, err
	}
	var fields []*Field
	if err := sqlx.SelectContext(ctx, s.db, &fields, s.q(query), args...); err != nil {
		return nil, err
	}
	for _, f := range fields {
		out[f.PostID] = append(out[f.PostID], f)
	}
	return out, nil
}

// UpdateKey renames a field scoped to its post.
func (s *FieldStore) UpdateKey(ctx context.Context, postID, id, key string) error {
	return execOnly(s.db.ExecContext(ctx, s.q(`
		UPDATE content_fields SET field_key = ? WHERE id = ? AND post_id = ?
	`), key, id, postID))
}

// UpdateValue replaces a field's value scoped to its post.
func (s *FieldStore) UpdateValue(ctx context.Context, postID, id, value string) error {
	return execOnly(s.db.ExecContext(ctx, s.q(`
		UPDATE content_fields SET field_value = ? WHERE id = ? AND post_id = ?
	`), value, id, postID))
}

func (s *FieldStore) Delete(ctx context.Context, postID, id string) error {
	return affectedOne(s.db.ExecContext(ctx, s.q(`
		DELETE FROM content_fields WHERE id = ? AND post_id = ?
	`), id, postID))
}
