package adapter

import "context"

// TelegramSender is the slice of the Bot API the notifier needs.
type TelegramSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
