package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Post is a page or post authored by a user.
type Post struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	ContentType string    `db:"content_type"`
	ContentText string    `db:"content_text"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type PostStore struct {
	db DB
}

func NewPostStore(db DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a post. contentType must already be normalized.
func (s *PostStore) Create(ctx context.Context, userID, contentType, text string) (*Post, error) {
	now := time.Now().UTC()
	p := &Post{
		ID:          uuid.New().String(),
		UserID:      userID,
		ContentType: contentType,
		ContentText: text,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO posts (id, user_id, content_type, content_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), p.ID, p.UserID, p.ContentType, p.ContentText, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	err := sqlx.GetContext(ctx, s.db, &p, s.q(`SELECT * FROM posts WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ListByUser returns the user's posts, oldest first.
func (s *PostStore) ListByUser(ctx context.Context, userID string) ([]*Post, error) {
	posts := []*Post{}
	err := sqlx.SelectContext(ctx, s.db, &posts, s.q(`
		SELECT * FROM posts WHERE user_id = ? ORDER BY created_at ASC, id ASC
	`), userID)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdateText replaces the content of a post.
func (s *PostStore) UpdateText(ctx context.Context, id, text string) error {
	return execOnly(s.db.ExecContext(ctx, s.q(`
		UPDATE posts SET content_text = ?, updated_at = ? WHERE id = ?
	`), text, time.Now().UTC(), id))
}

// Delete removes a post and its content fields.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM content_fields WHERE post_id = ?`), id); err != nil {
		return err
	}
	return affectedOne(s.db.ExecContext(ctx, s.q(`DELETE FROM posts WHERE id = ?`), id))
}
