// Package mailer provides the e-mail delivery channels: a file based record of every
// message and the production SMTP transport.
package mailer

import (
	"fmt"

	"reserver_notifier/internal/domain/mail"

	gomail "github.com/go-mail/mail/v2"
)

func buildMessage(msg mail.Message) (*gomail.Message, error) {
	if msg.From == "" {
		return nil, fmt.Errorf("message has no sender")
	}
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m, nil
}
