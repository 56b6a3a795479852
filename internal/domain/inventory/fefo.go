package inventory

import (
	"slices"
	"strings"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CompareFEFO orden de consumo: primero el que vence antes; empate por creación y luego por ID.
func CompareFEFO(a, b *entity.Batch) int {
	if a.ExpiryDate.Before(b.ExpiryDate) {
		return -1
	}
	if a.ExpiryDate.After(b.ExpiryDate) {
		return 1
	}
	if a.CreatedAt.Before(b.CreatedAt) {
		return -1
	}
	if a.CreatedAt.After(b.CreatedAt) {
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// SortFEFO ordena en sitio.
func SortFEFO(batches []*entity.Batch) {
	slices.SortFunc(batches, CompareFEFO)
}

// Take porción de un lote asignada a un consumo.
type Take struct {
	Batch    *entity.Batch
	Quantity decimal.Decimal
}

// PlanConsumption reparte qty entre los lotes con stock en orden FEFO.
// Devuelve las porciones y lo que no se pudo cubrir; no modifica los lotes.
func PlanConsumption(batches []*entity.Batch, qty decimal.Decimal) ([]Take, decimal.Decimal) {
	candidates := make([]*entity.Batch, 0, len(batches))
	for _, b := range batches {
		if b.HasStock() {
			candidates = append(candidates, b)
		}
	}
	SortFEFO(candidates)

	remaining := qty
	var takes []Take
	for _, b := range candidates {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(remaining, b.Quantity)
		takes = append(takes, Take{Batch: b, Quantity: take})
		remaining = remaining.Sub(take)
	}
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return takes, remaining
}
