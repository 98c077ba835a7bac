// Package mailtest provides an in-memory mail.Sender for tests.
package mailtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/joestump/cleo/internal/mail"
)

// Recorder is a mail.Sender that keeps messages in memory. If Err is set,
// Send returns it wrapped in mail.ErrSendFailed and records nothing.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	Err  error
}

// Sent is a message captured by Recorder with the settings it was sent under.
type Sent struct {
	Settings mail.Settings
	Message  mail.Message
}

func (r *Recorder) Send(ctx context.Context, s mail.Settings, m mail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return fmt.Errorf("%w: %w", mail.ErrSendFailed, r.Err)
	}
	r.sent = append(r.sent, Sent{Settings: s, Message: m})
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

// Last returns the most recent message, or false if none was sent.
func (r *Recorder) Last() (Sent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return Sent{}, false
	}
	return r.sent[len(r.sent)-1], true
}
