package mailtest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/cleo/internal/mail"
	"github.com/joestump/cleo/internal/mail/mailtest"
)

var _ mail.Sender = (*mailtest.Recorder)(nil)

func TestRecorder(t *testing.T) {
	r := &mailtest.Recorder{}
	_, ok := r.Last()
	assert.False(t, ok)

	s := mail.Settings{Server: "smtp.example.com"}
	require.NoError(t, r.Send(context.Background(), s, mail.Message{To: "a@example.com", Subject: "one"}))
	require.NoError(t, r.Send(context.Background(), s, mail.Message{To: "b@example.com", Subject: "two"}))

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, "two", last.Message.Subject)
	assert.Len(t, r.Messages(), 2)

	boom := errors.New("connection refused")
	r.Err = boom
	err := r.Send(context.Background(), s, mail.Message{To: "c@example.com"})
	assert.ErrorIs(t, err, mail.ErrSendFailed)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, r.Messages(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Send(ctx, s, mail.Message{}), context.Canceled)
}
