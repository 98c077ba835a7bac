// Package bootstrap seeds a fresh database with the instance settings and
// the first admin account from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/config"
	"github.com/joestump/cleo/internal/store"
)

// Run initializes instance_info and creates the configured admin when the
// instance has none. Calling it again on a seeded database changes nothing.
func Run(ctx context.Context, db *sqlx.DB, cfg *config.Config, logger *zap.Logger) error {
	if err := store.ValidateUsername(cfg.Admin.Username); err != nil {
		return fmt.Errorf("admin username: %w", err)
	}
	if err := store.ValidateEmail(cfg.Admin.Email); err != nil {
		return fmt.Errorf("admin email: %w", err)
	}

	return store.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		in, created, err := store.NewInstanceStore(tx).Init(ctx, store.Instance{
			Name:         cfg.Instance.Name,
			Hostname:     cfg.Instance.Hostname,
			SMTPServer:   cfg.SMTP.Server,
			SMTPUsername: cfg.SMTP.Username,
			SMTPPass:     cfg.SMTP.Pass,
		})
		if err != nil {
			return fmt.Errorf("init instance: %w", err)
		}
		if created {
			logger.Info("instance initialized", zap.String("name", in.Name), zap.String("hostname", in.Hostname))
		}

		users := store.NewUserStore(tx)
		n, err := users.CountAdmins(ctx)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if n > 0 {
			return nil
		}

		hash, err := auth.HashPassword(cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("admin password: %w", err)
		}
		u, err := users.Create(ctx, store.NewUser{
			Username:     cfg.Admin.Username,
			DisplayName:  cfg.Admin.DisplayName,
			Email:        cfg.Admin.Email,
			PasswordHash: hash,
			IsAdmin:      true,
			IsVerified:   true,
		})
		if err != nil {
			return fmt.Errorf("create admin %q: %w", cfg.Admin.Username, err)
		}
		logger.Info("admin account created", zap.String("user_id", u.ID), zap.String("username", u.Username))
		return nil
	})
}
