// Package notify entrega notificaciones: persiste en la bandeja y publica a los suscriptores.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"

	"github.com/jhoicas/inventario-lotes/internal/application/ports"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// Topic tópico del bus para notificaciones emitidas.
const Topic = "notification:created"

var _ ports.Notifier = (*Bus)(nil)

// Bus implementa ports.Notifier sobre EventBus.
type Bus struct {
	bus  EventBus.Bus
	sink repository.NotificationRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewBus crea el bus con un suscriptor que registra cada notificación en el log.
func NewBus(sink repository.NotificationRepository, log *logger.Logger) *Bus {
	b := &Bus{bus: EventBus.New(), sink: sink, log: log, now: time.Now}
	_ = b.bus.Subscribe(Topic, b.logNotification)
	return b
}

// Subscribe agrega un suscriptor síncrono.
func (b *Bus) Subscribe(fn func(n entity.Notification)) error {
	return b.bus.Subscribe(Topic, fn)
}

// Notify guarda la notificación y la publica. El error solo indica que la bandeja falló;
// los llamadores lo registran y siguen.
func (b *Bus) Notify(ctx context.Context, n entity.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now()
	}
	if err := b.sink.Create(ctx, &n); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}
	b.bus.Publish(Topic, n)
	return nil
}

// Recent últimas notificaciones de la bandeja.
func (b *Bus) Recent(ctx context.Context, limit int) ([]*entity.Notification, error) {
	return b.sink.ListRecent(ctx, limit)
}

func (b *Bus) logNotification(n entity.Notification) {
	b.log.Info().
		Str("type", string(n.Type)).
		Str("product_id", n.ProductID).
		Str("location", n.Location).
		Str("title", n.Title).
		Msg(n.Message)
}
