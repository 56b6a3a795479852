package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// NotificationRepository bandeja persistente de notificaciones emitidas.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListRecent(ctx context.Context, limit int) ([]*entity.Notification, error)
}
