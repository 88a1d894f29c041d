package mailer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reserver_notifier/internal/domain/mail"

	"github.com/google/uuid"
)

// FileTransport writes every message as an RFC 5322 .eml file into a directory.
type FileTransport struct {
	dir string
	now func() time.Time
}

func NewFileTransport(dir string) *FileTransport {
	return &FileTransport{dir: dir, now: time.Now}
}

func (t *FileTransport) Name() string { return "file" }

func (t *FileTransport) Send(ctx context.Context, msg mail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := buildMessage(msg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create mail directory %s: %w", t.dir, err)
	}

	name := fmt.Sprintf("%s-%s.eml", t.now().UTC().Format("20060102-150405"), uuid.NewString())
	path := filepath.Join(t.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create mail file: %w", err)
	}
	if _, err := m.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write mail file %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close mail file %s: %w", name, err)
	}
	return nil
}
