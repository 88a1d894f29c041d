package mailer

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reserver_notifier/internal/domain/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMessage() mail.Message {
	return mail.Message{
		From:    "no-reply@reserver.471.no",
		To:      []string{"leader@example.org"},
		Subject: "Cruise departure notification",
		Text:    "Your cruise departs tomorrow.",
		HTML:    "<p>Your cruise departs tomorrow.</p>",
	}
}

func TestFileTransport_WritesEML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mails")
	tr := NewFileTransport(dir)

	require.NoError(t, tr.Send(context.Background(), sampleMessage()))
	require.NoError(t, tr.Send(context.Background(), sampleMessage()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".eml"))

	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "From: no-reply@reserver.471.no")
	assert.Contains(t, content, "To: leader@example.org")
	assert.Contains(t, content, "Subject: Cruise departure notification")
	assert.Contains(t, content, "text/html")
	assert.Equal(t, "file", tr.Name())
}

func TestFileTransport_RejectsInvalidMessage(t *testing.T) {
	tr := NewFileTransport(t.TempDir())

	msg := sampleMessage()
	msg.To = nil
	assert.Error(t, tr.Send(context.Background(), msg))

	msg = sampleMessage()
	msg.From = ""
	assert.Error(t, tr.Send(context.Background(), msg))
}

func TestFileTransport_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewFileTransport(t.TempDir()).Send(ctx, sampleMessage()), context.Canceled)
}

func TestSMTPTransport_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	tr := NewSMTPTransport(SMTPConfig{Host: "127.0.0.1", Port: port, Timeout: time.Second})
	err = tr.Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp delivery")
	assert.Equal(t, "smtp", tr.Name())
}
