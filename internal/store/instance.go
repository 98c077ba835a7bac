package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Instance is the single row of instance-wide settings.
type Instance struct {
	ID           string    `db:"id"`
	Hostname     string    `db:"hostname"`
	Name         string    `db:"instance_name"`
	SMTPServer   string    `db:"smtp_server"`
	SMTPUsername string    `db:"smtp_username"`
	SMTPPass     string    `db:"smtp_pass"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// InstanceField names an editable column of instance_info.
type InstanceField string

const (
	InstanceName         InstanceField = "instance_name"
	InstanceHostname     InstanceField = "hostname"
	InstanceSMTPServer   InstanceField = "smtp_server"
	InstanceSMTPUsername InstanceField = "smtp_username"
	InstanceSMTPPass     InstanceField = "smtp_pass"
)

type InstanceStore struct {
	db DB
}

func NewInstanceStore(db DB) *InstanceStore {
	return &InstanceStore{db: db}
}

func (s *InstanceStore) q(query string) string { return s.db.Rebind(query) }

// Get returns the instance settings, or ErrNotFound before bootstrap.
func (s *InstanceStore) Get(ctx context.Context) (*Instance, error) {
	var in Instance
	err := sqlx.GetContext(ctx, s.db, &in, s.q(`SELECT * FROM instance_info ORDER BY created_at ASC LIMIT 1`))
	if err != nil {
		return nil, notFound(err)
	}
	return &in, nil
}

// Init inserts the settings row if none exists and returns the stored row.
// It never overwrites settings an admin has edited.
func (s *InstanceStore) Init(ctx context.Context, in Instance) (*Instance, bool, error) {
	existing, err := s.Get(ctx)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	now := time.Now().UTC()
	in.ID = uuid.New().String()
	in.CreatedAt = now
	in.UpdatedAt = now
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO instance_info (id, hostname, instance_name, smtp_server, smtp_username, smtp_pass, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), in.ID, in.Hostname, in.Name, in.SMTPServer, in.SMTPUsername, in.SMTPPass, in.CreatedAt, in.UpdatedAt)
	if err != nil {
		return nil, false, err
	}
	return &in, true, nil
}

// Update sets one editable field.
func (s *InstanceStore) Update(ctx context.Context, field InstanceField, value string) error {
	switch field {
	case InstanceName, InstanceHostname, InstanceSMTPServer, InstanceSMTPUsername, InstanceSMTPPass:
	default:
		return fmt.Errorf("unknown instance field %q", field)
	}
	in, err := s.Get(ctx)
	if err != nil {
		return err
	}
	return execOnly(s.db.ExecContext(ctx,
		s.q(`UPDATE instance_info SET `+string(field)+` = ?, updated_at = ? WHERE id = ?`),
		value, time.Now().UTC(), in.ID))
}
