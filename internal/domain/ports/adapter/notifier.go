package adapter

import (
	"context"

	"learning-access/internal/domain/model"
)

// AdminNotifier alerts administrators about code lifecycle events.
type AdminNotifier interface {
	NotifyCodeExhausted(ctx context.Context, code *model.AccessCode) error
}
