package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/application/ports"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
	"github.com/jhoicas/inventario-lotes/pkg/metrics"
)

// LowStockAlerter emite LOW_STOCK después de una salida o ajuste cuando el stock total del
// producto queda en o bajo su mínimo. Nunca devuelve error: los fallos se registran.
type LowStockAlerter struct {
	notifier ports.Notifier
	cooldown ports.Cooldown
	ttl      time.Duration
	log      *logger.Logger
}

// NewLowStockAlerter ttl 0 desactiva el cool-down (se notifica en cada salida bajo el mínimo).
func NewLowStockAlerter(notifier ports.Notifier, cooldown ports.Cooldown, ttl time.Duration, log *logger.Logger) *LowStockAlerter {
	return &LowStockAlerter{notifier: notifier, cooldown: cooldown, ttl: ttl, log: log}
}

func lowStockKey(productID string) string { return "low-stock:" + productID }

// Check evalúa un movimiento ya confirmado.
func (a *LowStockAlerter) Check(ctx context.Context, rec *recorded) {
	if a == nil || rec == nil {
		return
	}
	p := rec.product
	useCooldown := a.ttl > 0 && a.cooldown != nil

	if rec.total.GreaterThan(p.MinimumStock) {
		if useCooldown {
			// repuso sobre el mínimo: la próxima caída vuelve a notificar
			if err := a.cooldown.Reset(ctx, lowStockKey(p.ID)); err != nil {
				a.log.Warn().Err(err).Str("product_id", p.ID).Msg("no se pudo limpiar el cool-down de stock bajo")
			}
		}
		return
	}
	if rec.movement.Kind == entity.MovementEntry {
		return
	}

	if useCooldown {
		ok, err := a.cooldown.Acquire(ctx, lowStockKey(p.ID), a.ttl)
		if err != nil {
			a.log.Warn().Err(err).Str("product_id", p.ID).Msg("cool-down no disponible, se notifica igual")
		} else if !ok {
			metrics.Notifications.WithLabelValues(string(entity.NotificationLowStock), "suppressed").Inc()
			return
		}
	}

	n := entity.NewLowStockNotification(p, rec.movement.Location, rec.total, rec.movement.CreatedAt)
	if err := ports.NotifySafely(ctx, a.notifier, n); err != nil {
		metrics.Notifications.WithLabelValues(string(n.Type), "failed").Inc()
		a.log.Error().Err(err).
			Str("product_id", p.ID).
			Str("total", rec.total.String()).
			Msg("alerta de stock bajo no entregada")
		return
	}
	metrics.Notifications.WithLabelValues(string(n.Type), "sent").Inc()
}
