package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"learning-access/internal/domain/ports/adapter"
)

var _ adapter.TelegramSender = (*NoopSender)(nil)

// NoopSender logs messages instead of sending them. Used when no bot token is configured.
type NoopSender struct {
	log *zerolog.Logger
}

func NewNoopSender(logger *zerolog.Logger) *NoopSender {
	return &NoopSender{log: logger}
}

func (n *NoopSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	n.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("[noop-telegram] message")
	return nil
}
