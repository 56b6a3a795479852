package inventory

import (
	"slices"
	"strings"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockKey partición del ledger.
type StockKey struct {
	ProductID string
	Location  string
}

// Apply aplica un movimiento sobre un nivel: ENTRY suma, EXIT resta, ADJUSTMENT fija.
func Apply(current decimal.Decimal, m *entity.StockMovement) decimal.Decimal {
	switch m.Kind {
	case entity.MovementEntry:
		return current.Add(m.Quantity)
	case entity.MovementExit:
		return current.Sub(m.Quantity)
	case entity.MovementAdjustment:
		return m.Quantity
	}
	return current
}

// Fold reproduce los movimientos en orden de Seq a partir de cero.
// No modifica el slice recibido.
func Fold(movs []*entity.StockMovement) decimal.Decimal {
	qty := decimal.Zero
	for _, m := range sortedBySeq(movs) {
		qty = Apply(qty, m)
	}
	return qty
}

// FoldByKey agrupa por (producto, ubicación) y pliega cada grupo.
// Las filas salen ordenadas por producto y luego ubicación.
func FoldByKey(movs []*entity.StockMovement) []entity.InventoryLevel {
	levels := make(map[StockKey]decimal.Decimal)
	for _, m := range sortedBySeq(movs) {
		k := StockKey{ProductID: m.ProductID, Location: m.Location}
		levels[k] = Apply(levels[k], m)
	}
	out := make([]entity.InventoryLevel, 0, len(levels))
	for k, q := range levels {
		out = append(out, entity.InventoryLevel{ProductID: k.ProductID, Location: k.Location, Quantity: q})
	}
	slices.SortFunc(out, func(a, b entity.InventoryLevel) int {
		if c := strings.Compare(a.ProductID, b.ProductID); c != 0 {
			return c
		}
		return strings.Compare(a.Location, b.Location)
	})
	return out
}

func sortedBySeq(movs []*entity.StockMovement) []*entity.StockMovement {
	out := slices.Clone(movs)
	slices.SortStableFunc(out, func(a, b *entity.StockMovement) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	return out
}
