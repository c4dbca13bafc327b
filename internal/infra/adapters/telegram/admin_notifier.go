package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/adapter"
	"learning-access/internal/infra/i18n"
	"learning-access/internal/infra/metrics"
)

var _ adapter.AdminNotifier = (*AdminNotifier)(nil)

// AdminNotifier tells every configured admin chat when a code runs out of uses.
type AdminNotifier struct {
	sender  adapter.TelegramSender
	chatIDs []int64
	tr      *i18n.Translator
	log     *zerolog.Logger
}

func NewAdminNotifier(sender adapter.TelegramSender, chatIDs []int64, tr *i18n.Translator, logger *zerolog.Logger) *AdminNotifier {
	compLog := logger.With().Str("component", "AdminNotifier").Logger()
	return &AdminNotifier{sender: sender, chatIDs: chatIDs, tr: tr, log: &compLog}
}

func (n *AdminNotifier) NotifyCodeExhausted(ctx context.Context, code *model.AccessCode) error {
	if len(n.chatIDs) == 0 {
		n.log.Debug().Str("code_id", code.ID).Msg("no admin chats configured")
		return nil
	}
	text := n.message(code)

	var errs []error
	for _, id := range n.chatIDs {
		if err := n.sender.SendMessage(ctx, id, text); err != nil {
			metrics.IncAdminNotification("telegram", "failed")
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
			continue
		}
		metrics.IncAdminNotification("telegram", "sent")
	}
	if err := errors.Join(errs...); err != nil {
		n.log.Warn().Err(err).Str("code_id", code.ID).Msg("exhausted-code notification incomplete")
		return err
	}
	return nil
}

func (n *AdminNotifier) message(code *model.AccessCode) string {
	args := []interface{}{code.Code, code.EffectKind, code.EffectTarget, code.CurrentUses, code.MaxUses}
	if n.tr == nil {
		return fmt.Sprintf("Access code %s (%s: %s) is used up: %d/%d.", args...)
	}
	return n.tr.T(n.tr.DefaultLang(), "notify.code_exhausted", args...)
}
