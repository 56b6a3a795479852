package inventory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/application/ports"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// Drift fila del cache que no coincidía con el ledger.
type Drift struct {
	ProductID string
	Location  string
	Cached    decimal.Decimal
	Ledger    decimal.Decimal
}

// ReindexUseCase reconstruye el cache de stock a partir del ledger.
type ReindexUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
	now      ports.Clock
}

// NewReindexUseCase construye el caso de uso.
func NewReindexUseCase(txRunner TxRunner, log *logger.Logger, now ports.Clock) *ReindexUseCase {
	if now == nil {
		now = time.Now
	}
	return &ReindexUseCase{txRunner: txRunner, log: log, now: now}
}

// Reindex compara cada fila del cache con el pliegue del ledger y reescribe las que difieren.
// productID vacío = todos los productos. Filas del cache sin movimientos deben quedar en cero.
func (uc *ReindexUseCase) Reindex(ctx context.Context, productID string) ([]Drift, error) {
	var drifts []Drift
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		drifts = nil
		movs, err := repos.Movements.ListForFold(ctx, repository.MovementFilter{ProductID: productID})
		if err != nil {
			return err
		}
		ledger := make(map[inventory.StockKey]decimal.Decimal)
		for _, lvl := range inventory.FoldByKey(movs) {
			ledger[inventory.StockKey{ProductID: lvl.ProductID, Location: lvl.Location}] = lvl.Quantity
		}

		rows, err := repos.Stock.List(ctx, productID)
		if err != nil {
			return err
		}
		cached := make(map[inventory.StockKey]decimal.Decimal, len(rows))
		for _, r := range rows {
			cached[inventory.StockKey{ProductID: r.ProductID, Location: r.Location}] = r.Quantity
		}

		keys := make(map[inventory.StockKey]struct{}, len(ledger)+len(cached))
		for k := range ledger {
			keys[k] = struct{}{}
		}
		for k := range cached {
			keys[k] = struct{}{}
		}

		now := uc.now()
		for k := range keys {
			want := ledger[k]
			have, ok := cached[k]
			if ok && have.Equal(want) {
				continue
			}
			row, err := repos.Stock.LockForUpdate(ctx, k.ProductID, k.Location)
			if err != nil {
				return err
			}
			if row.Quantity.Equal(want) {
				continue
			}
			drifts = append(drifts, Drift{ProductID: k.ProductID, Location: k.Location, Cached: row.Quantity, Ledger: want})
			row.Quantity = want
			row.UpdatedAt = now
			if err := repos.Stock.Upsert(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortDrifts(drifts)
	if len(drifts) > 0 {
		uc.log.Warn().Int("rows", len(drifts)).Str("product_id", productID).Msg("cache de stock corregido desde el ledger")
	}
	return drifts, nil
}

func sortDrifts(drifts []Drift) {
	slices.SortFunc(drifts, func(a, b Drift) int {
		if c := strings.Compare(a.ProductID, b.ProductID); c != 0 {
			return c
		}
		return strings.Compare(a.Location, b.Location)
	})
}
