package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"learning-access/internal/domain/ports/adapter"
)

var _ adapter.TelegramSender = (*BotSender)(nil)

// BotSender sends plain messages through the Telegram Bot API. It never polls for updates.
type BotSender struct {
	bot *tgbotapi.BotAPI
}

func NewBotSender(token string) (*BotSender, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &BotSender{bot: bot}, nil
}

func (b *BotSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	// Support early cancellation
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	_, err := b.bot.Send(msg)
	return err
}
