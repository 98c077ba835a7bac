package mail

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes messages to the logger instead of delivering them.
// Selected with CLEO_SMTP_DRIVER=log for local development.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("mail")}
}

func (s *LogSender) Send(ctx context.Context, settings Settings, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("email not delivered (log driver)",
		zap.String("from", settings.Username),
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body),
	)
	return nil
}
