package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// idealStockFactor stock ideal = mínimo * 1.5.
var idealStockFactor = decimal.NewFromFloat(1.5)

// LowStockUseCase genera la lista de reposición: productos con stock en o bajo su mínimo.
type LowStockUseCase struct {
	repos repository.Repos
}

// NewLowStockUseCase construye el caso de uso.
func NewLowStockUseCase(repos repository.Repos) *LowStockUseCase {
	return &LowStockUseCase{repos: repos}
}

// LowStock devuelve los productos con MinimumStock > 0 cuyo stock plegado (en location, o sumado
// en todas las ubicaciones si viene vacío) es <= MinimumStock, ordenados por mayor déficit.
func (uc *LowStockUseCase) LowStock(ctx context.Context, location string) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.repos.Products.ListWithMinimumStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	filter := repository.MovementFilter{}
	if location != "" {
		location = entity.NormalizeLocation(location)
		filter.Location = location
	}
	movs, err := uc.repos.Movements.ListForFold(ctx, filter)
	if err != nil {
		return nil, err
	}
	// Suma por producto de los niveles plegados por ubicación
	current := make(map[string]decimal.Decimal)
	for _, lvl := range inventory.FoldByKey(movs) {
		current[lvl.ProductID] = current[lvl.ProductID].Add(lvl.Quantity)
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, p := range products {
		if !p.MinimumStock.GreaterThan(decimal.Zero) {
			continue
		}
		stock := current[p.ID]
		if stock.GreaterThan(p.MinimumStock) {
			continue
		}
		ideal := p.MinimumStock.Mul(idealStockFactor)
		suggested := ideal.Sub(stock)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			SKU:                p.SKU,
			ProductName:        p.Name,
			Location:           location,
			CurrentStock:       stock,
			MinimumStock:       p.MinimumStock,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           p.CostPrice,
			EstimatedOrderCost: suggested.Mul(p.CostPrice).Round(2),
		})
	}

	// Mayor déficit (mínimo - actual) primero; empate por producto
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.MinimumStock.Sub(a.CurrentStock)
		defB := b.MinimumStock.Sub(b.CurrentStock)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.ProductID < b.ProductID
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
