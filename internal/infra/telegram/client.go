// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"fmt"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter sends operator alerts to a fixed Telegram chat using the
// gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot    *telebot.Bot
	chatID int64
}

// NewBot creates a send-only bot; no poller is started and getMe is not called.
func NewBot(token, apiURL string) (*telebot.Bot, error) {
	b, err := telebot.NewBot(telebot.Settings{
		URL:     apiURL, // Empty means the public Bot API
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Telegram bot: %w", err)
	}
	return b, nil
}

func NewTelebotAdapter(b *telebot.Bot, chatID int64) *TelebotAdapter {
	return &TelebotAdapter{bot: b, chatID: chatID}
}

// Alert sends a plain text message to the operator chat.
func (tba *TelebotAdapter) Alert(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	recipient := &telebot.Chat{ID: tba.chatID}
	_, err := tba.bot.Send(recipient, "⚠️ reserver notifier: "+text, &telebot.SendOptions{DisableWebPagePreview: true})
	return err
}
