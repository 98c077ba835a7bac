// Package mail sends Cleo's account emails over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/joestump/cleo/internal/store"
)

// ErrSendFailed wraps every delivery failure so handlers can map it to 502.
var ErrSendFailed = errors.New("email delivery failed")

// Settings are the SMTP relay parameters. They are read from instance_info
// at send time so admin edits apply to the next email.
type Settings struct {
	Server   string
	Port     int
	Username string
	Password string
}

// SettingsFor combines the stored instance SMTP settings with the configured port.
func SettingsFor(in *store.Instance, port int) Settings {
	return Settings{
		Server:   in.SMTPServer,
		Port:     port,
		Username: in.SMTPUsername,
		Password: in.SMTPPass,
	}
}

// Message is a plain-text email. The sender is always the SMTP username.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, s Settings, m Message) error
}

// SMTPSender delivers through an authenticated SMTP relay.
type SMTPSender struct {
	Timeout time.Duration
}

// NewSMTPSender returns an SMTPSender with a 30s dial/send timeout.
func NewSMTPSender() *SMTPSender {
	return &SMTPSender{Timeout: 30 * time.Second}
}

func (s *SMTPSender) Send(ctx context.Context, settings Settings, m Message) error {
	msg, err := buildMessage(settings, m)
	if err != nil {
		return err
	}
	client, err := gomail.NewClient(settings.Server, clientOptions(settings, s.Timeout)...)
	if err != nil {
		return fmt.Errorf("%w: smtp client: %v", ErrSendFailed, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

func buildMessage(settings Settings, m Message) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(settings.Username); err != nil {
		return nil, fmt.Errorf("%w: invalid sender %q: %v", ErrSendFailed, settings.Username, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("%w: invalid recipient %q: %v", ErrSendFailed, m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)
	return msg, nil
}

// clientOptions uses implicit TLS on 465 and mandatory STARTTLS elsewhere.
func clientOptions(settings Settings, timeout time.Duration) []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(settings.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(settings.Username),
		gomail.WithPassword(settings.Password),
	}
	if timeout > 0 {
		opts = append(opts, gomail.WithTimeout(timeout))
	}
	if settings.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	return opts
}

// VerificationMessage builds the email that carries an address confirmation link.
func VerificationMessage(in *store.Instance, to, token string) Message {
	return Message{
		To:      to,
		Subject: "Account verification for " + in.Name,
		Body:    "Please copy and paste this link into your browser: " + VerificationLink(in.Hostname, token),
	}
}

// VerificationLink is the URL that redeems token.
func VerificationLink(hostname, token string) string {
	return hostname + "/email/" + token
}
