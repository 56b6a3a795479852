package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/application/ports"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
	"github.com/jhoicas/inventario-lotes/pkg/metrics"
)

// ExpiryAlerts revisa lotes próximos a vencer y emite una notificación por producto+ubicación,
// con un cool-down que evita repetirla en cada corrida.
type ExpiryAlerts struct {
	repos      repository.Repos
	notifier   ports.Notifier
	cooldown   ports.Cooldown
	windowDays int
	ttl        time.Duration
	now        ports.Clock
	log        *logger.Logger
}

// NewExpiryAlerts construye la tarea. windowDays <= 0 usa 15; ttl <= 0 usa 24h.
func NewExpiryAlerts(
	repos repository.Repos,
	notifier ports.Notifier,
	cooldown ports.Cooldown,
	windowDays int,
	ttl time.Duration,
	log *logger.Logger,
	now ports.Clock,
) *ExpiryAlerts {
	if windowDays <= 0 {
		windowDays = 15
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &ExpiryAlerts{
		repos:      repos,
		notifier:   notifier,
		cooldown:   cooldown,
		windowDays: windowDays,
		ttl:        ttl,
		now:        now,
		log:        log,
	}
}

func expiryCooldownKey(productID, location string) string {
	return "expiry:" + productID + ":" + location
}

// Run ejecuta una pasada y devuelve cuántas notificaciones se emitieron.
// Los fallos de entrega se registran y no cortan la pasada.
func (a *ExpiryAlerts) Run(ctx context.Context) (sent int, err error) {
	now := a.now()
	horizon := inventory.DateOnly(now).AddDate(0, 0, a.windowDays)
	batches, err := a.repos.Batches.ListExpiring(ctx, horizon)
	if err != nil {
		return 0, fmt.Errorf("listar lotes por vencer: %w", err)
	}

	products := make(map[string]*entity.Product)
	for _, b := range batches {
		key := expiryCooldownKey(b.ProductID, b.Location)
		days := inventory.DaysUntilExpiry(b.ExpiryDate, now)

		if days > a.windowDays {
			if err := a.cooldown.Reset(ctx, key); err != nil {
				a.log.Warn().Err(err).Str("key", key).Msg("no se pudo limpiar el cool-down")
			}
			continue
		}

		product, ok := products[b.ProductID]
		if !ok {
			product, err = a.repos.Products.GetByID(ctx, b.ProductID)
			if err != nil {
				return sent, err
			}
			products[b.ProductID] = product
		}
		if product == nil {
			continue
		}

		acquired, err := a.cooldown.Acquire(ctx, key, a.ttl)
		if err != nil {
			a.log.Warn().Err(err).Str("key", key).Msg("cool-down no disponible, se omite el lote")
			continue
		}
		n := entity.NewExpiryNotification(product, b, days, now)
		if !acquired {
			metrics.Notifications.WithLabelValues(string(n.Type), "suppressed").Inc()
			continue
		}

		if err := ports.NotifySafely(ctx, a.notifier, n); err != nil {
			metrics.Notifications.WithLabelValues(string(n.Type), "failed").Inc()
			a.log.Error().Err(err).
				Str("product_id", b.ProductID).
				Str("location", b.Location).
				Msg("fallo al notificar vencimiento")
			if err := a.cooldown.Reset(ctx, key); err != nil {
				a.log.Warn().Err(err).Str("key", key).Msg("no se pudo limpiar el cool-down")
			}
			continue
		}
		metrics.Notifications.WithLabelValues(string(n.Type), "sent").Inc()
		sent++
		a.log.Info().
			Str("type", string(n.Type)).
			Str("product_id", b.ProductID).
			Int("days", days).
			Msg("notificación de vencimiento emitida")
	}
	return sent, nil
}
