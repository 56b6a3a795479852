package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// Límites de paginación de ListMovements.
const (
	DefaultMovementsLimit = 50
	MaxMovementsLimit     = 500
)

// StockQueryUseCase lecturas derivadas del ledger. No usa el cache: siempre pliega movimientos.
type StockQueryUseCase struct {
	repos repository.Repos
}

// NewStockQueryUseCase construye el caso de uso con repositorios fuera de transacción.
func NewStockQueryUseCase(repos repository.Repos) *StockQueryUseCase {
	return &StockQueryUseCase{repos: repos}
}

// CurrentStock stock de un producto en una ubicación según el ledger.
func (uc *StockQueryUseCase) CurrentStock(ctx context.Context, productID, location string) (decimal.Decimal, error) {
	if productID == "" {
		return decimal.Zero, fmt.Errorf("producto requerido: %w", domain.ErrInvalidInput)
	}
	movs, err := uc.repos.Movements.ListByKey(ctx, productID, entity.NormalizeLocation(location))
	if err != nil {
		return decimal.Zero, err
	}
	return inventory.Fold(movs), nil
}

// CachedStock valor del cache de stock (proyección); cero si la fila no existe.
// Difiere de CurrentStock solo si el cache se desvió del ledger (ver Reindex).
func (uc *StockQueryUseCase) CachedStock(ctx context.Context, productID, location string) (decimal.Decimal, error) {
	if productID == "" {
		return decimal.Zero, fmt.Errorf("producto requerido: %w", domain.ErrInvalidInput)
	}
	row, err := uc.repos.Stock.Get(ctx, productID, entity.NormalizeLocation(location))
	if err != nil {
		return decimal.Zero, err
	}
	return row.Quantity, nil
}

// SummaryFilter filtros opcionales del resumen.
type SummaryFilter struct {
	ProductID string
	Location  string
}

// Summary stock por producto+ubicación, ordenado por producto y luego ubicación.
func (uc *StockQueryUseCase) Summary(ctx context.Context, filter SummaryFilter) ([]entity.InventoryLevel, error) {
	f := repository.MovementFilter{ProductID: filter.ProductID}
	if filter.Location != "" {
		f.Location = entity.NormalizeLocation(filter.Location)
	}
	movs, err := uc.repos.Movements.ListForFold(ctx, f)
	if err != nil {
		return nil, err
	}
	return inventory.FoldByKey(movs), nil
}

// ListMovements auditoría del ledger, más recientes primero.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("tipo de movimiento %q: %w", filter.Kind, domain.ErrInvalidInput)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("rango de fechas invertido: %w", domain.ErrInvalidInput)
	}
	if filter.Location != "" {
		filter.Location = entity.NormalizeLocation(filter.Location)
	}
	if limit <= 0 {
		limit = DefaultMovementsLimit
	}
	if limit > MaxMovementsLimit {
		limit = MaxMovementsLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repos.Movements.List(ctx, filter, limit, offset)
}
