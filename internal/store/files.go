package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// File is the metadata of an uploaded blob. The bytes live in storage under StorageKey.
type File struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Name        string    `db:"file_name"`
	StorageKey  string    `db:"storage_key"`
	ContentType string    `db:"content_type"`
	SizeBytes   int64     `db:"size_bytes"`
	CreatedAt   time.Time `db:"created_at"`
}

type FileStore struct {
	db DB
}

func NewFileStore(db DB) *FileStore {
	return &FileStore{db: db}
}

func (s *FileStore) q(query string) string { return s.db.Rebind(query) }

// Create records an uploaded file. Returns ErrConflict if the name is taken.
func (s *FileStore) Create(ctx context.Context, userID, name, storageKey, contentType string, size int64) (*File, error) {
	f := &File{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		StorageKey:  storageKey,
		ContentType: contentType,
		SizeBytes:   size,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO files (id, user_id, file_name, storage_key, content_type, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), f.ID, f.UserID, f.Name, f.StorageKey, f.ContentType, f.SizeBytes, f.CreatedAt)
	if err != nil {
		return nil, conflict(err)
	}
	return f, nil
}

func (s *FileStore) GetByID(ctx context.Context, id string) (*File, error) {
	var f File
	err := sqlx.GetContext(ctx, s.db, &f, s.q(`SELECT * FROM files WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// GetByName looks a file up by the name it is served under.
func (s *FileStore) GetByName(ctx context.Context, name string) (*File, error) {
	var f File
	err := sqlx.GetContext(ctx, s.db, &f, s.q(`SELECT * FROM files WHERE file_name = ?`), name)
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *FileStore) ListByUser(ctx context.Context, userID string) ([]*File, error) {
	files := []*File{}
	err := sqlx.SelectContext(ctx, s.db, &files, s.q(`
		SELECT * FROM files WHERE user_id = ? ORDER BY created_at ASC, id ASC
	`), userID)
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	return affectedOne(s.db.ExecContext(ctx, s.q(`DELETE FROM files WHERE id = ?`), id))
}
