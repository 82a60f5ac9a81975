package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier sends messages to the configured admin chat. The bot API
// client must be constructed with an HTTP timeout so no send can block
// indefinitely.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

// NewTelegramNotifier creates a notifier targeting the admin chat.
func NewTelegramNotifier(api *tgbotapi.BotAPI, chatID int64, log zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		api:    api,
		chatID: chatID,
		log:    log.With().Str("component", "notifier").Logger(),
	}
}

// Send delivers a plain HTML-formatted message to the admin chat.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		n.log.Error().Err(err).Msg("Failed to send admin notification")
		return fmt.Errorf("send admin notification: %w", err)
	}
	return nil
}

// SendWithActions delivers a message with one inline button per action.
func (n *TelegramNotifier) SendWithActions(ctx context.Context, text string, actions []Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(actions))
	for _, a := range actions {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(a.Label, a.Token))
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))

	if _, err := n.api.Send(msg); err != nil {
		n.log.Error().Err(err).Msg("Failed to send admin action request")
		return fmt.Errorf("send admin action request: %w", err)
	}
	return nil
}
