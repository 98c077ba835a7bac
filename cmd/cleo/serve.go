package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/cleo/internal/api"
	"github.com/joestump/cleo/internal/bootstrap"
	"github.com/joestump/cleo/internal/build"
	"github.com/joestump/cleo/internal/db"
	"github.com/joestump/cleo/internal/logging"
	"github.com/joestump/cleo/internal/mail"
	"github.com/joestump/cleo/internal/server"
	"github.com/joestump/cleo/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			logger.Info("starting", zap.String("build", build.String()))

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}
			if err := bootstrap.Run(ctx, database, cfg, logger); err != nil {
				return err
			}

			files, err := storage.NewFilesystem(cfg.Files.Dir, logger)
			if err != nil {
				return err
			}

			var mailer mail.Sender = mail.NewSMTPSender()
			if cfg.SMTP.Driver == "log" {
				logger.Warn("smtp driver is log; verification emails will only be logged")
				mailer = mail.NewLogSender(logger)
			}

			router := api.NewRouter(api.Deps{
				DB:            database,
				Logger:        logger,
				Storage:       files,
				Mailer:        mailer,
				SMTPPort:      cfg.SMTP.Port,
				MaxUploadSize: cfg.Files.MaxUploadSize,
				CORSOrigins:   cfg.HTTP.CORSOrigins,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			return server.Run(ctx, srv, logger, cfg.HTTP.ShutdownTimeout)
		},
	}
}
