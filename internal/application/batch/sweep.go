package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/pkg/metrics"
)

// RepriceAll re-guarda cada lote con stock (hook de guardado) en su propia transacción,
// repartido en un pool acotado. Devuelve cuántos lotes se procesaron.
// Un lote que falla se registra y no detiene el barrido.
func (m *Manager) RepriceAll(ctx context.Context) (processed int, err error) {
	ids, err := m.repos.Batches.ListAvailableIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listar lotes: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(m.sweepWorkers)
	if err != nil {
		return 0, fmt.Errorf("pool de barrido: %w", err)
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		done   atomic.Int64
		failed atomic.Int64
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			ok, err := m.repriceOne(ctx, id)
			if err != nil {
				failed.Add(1)
				metrics.BatchesRepriced.WithLabelValues("sweep", "failed").Inc()
				m.log.Warn().Err(err).Str("batch_id", id).Msg("no se pudo repreciar el lote")
				return
			}
			if ok {
				done.Add(1)
				metrics.BatchesRepriced.WithLabelValues("sweep", "ok").Inc()
			}
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
			m.log.Error().Err(submitErr).Str("batch_id", id).Msg("no se pudo encolar el lote")
		}
	}
	wg.Wait()

	m.log.Info().
		Int64("processed", done.Load()).
		Int64("failed", failed.Load()).
		Msg("barrido de descuentos terminado")
	return int(done.Load()), ctx.Err()
}

func (m *Manager) repriceOne(ctx context.Context, id string) (bool, error) {
	saved := false
	err := m.txRunner.Run(ctx, func(repos repository.Repos) error {
		b, err := repos.Batches.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil || !b.HasStock() {
			return nil
		}
		product, err := productFor(ctx, repos, b)
		if err != nil {
			return err
		}
		if err := m.save(ctx, repos, b, product, false); err != nil {
			return err
		}
		saved = true
		return nil
	})
	return saved, err
}

// BackfillOriginalPrices completa OriginalSalePrice desde el catálogo en lotes que no lo tienen
// y los re-guarda. Lotes cuyo producto no existe o no tiene precio se omiten.
func (m *Manager) BackfillOriginalPrices(ctx context.Context) (updated int, err error) {
	defer metrics.ObserveJob("backfill", time.Now(), &err)

	ids, err := m.repos.Batches.ListMissingOriginalPriceIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listar lotes sin precio: %w", err)
	}
	for _, id := range ids {
		var ok bool
		err := m.txRunner.Run(ctx, func(repos repository.Repos) error {
			b, err := repos.Batches.GetByIDForUpdate(ctx, id)
			if err != nil || b == nil || !b.OriginalSalePrice.IsZero() {
				return err
			}
			product, err := repos.Products.GetByID(ctx, b.ProductID)
			if err != nil || product == nil || product.SalePrice.IsZero() {
				return err
			}
			b.OriginalSalePrice = product.SalePrice
			if err := m.save(ctx, repos, b, product, false); err != nil {
				return err
			}
			ok = true
			return nil
		})
		if err != nil {
			metrics.BatchesRepriced.WithLabelValues("backfill", "failed").Inc()
			return updated, fmt.Errorf("completar precio del lote %s: %w", id, err)
		}
		if ok {
			updated++
			metrics.BatchesRepriced.WithLabelValues("backfill", "ok").Inc()
		}
	}
	return updated, nil
}
