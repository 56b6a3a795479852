package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// Notifier canal de entrega de notificaciones (fire-and-forget para el llamador).
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification) error
}

// Cooldown ventana de supresión por clave.
type Cooldown interface {
	// Acquire devuelve true si la clave estaba libre y la reserva por ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Reset libera la clave antes de que expire.
	Reset(ctx context.Context, key string) error
}

// Clock fuente de tiempo inyectable.
type Clock func() time.Time

// NotifySafely entrega n y convierte errores o pánicos del canal en ErrNotificationFailed.
// notifier nil no hace nada.
func NotifySafely(ctx context.Context, notifier Notifier, n entity.Notification) (err error) {
	if notifier == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: pánico: %v", domain.ErrNotificationFailed, r)
		}
	}()
	if err := notifier.Notify(ctx, n); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}
	return nil
}
