package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository puerto del cache de stock por producto+ubicación.
// Es una proyección reconstruible del ledger; se actualiza en la misma tx que cada movimiento.
type StockRepository interface {
	// Get devuelve una fila en cero si no existe.
	Get(ctx context.Context, productID, location string) (*entity.Stock, error)
	// LockForUpdate crea la fila si falta y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
	LockForUpdate(ctx context.Context, productID, location string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	// TotalByProduct suma del cache en todas las ubicaciones.
	TotalByProduct(ctx context.Context, productID string) (decimal.Decimal, error)
	// List filas del cache; productID vacío = todas.
	List(ctx context.Context, productID string) ([]*entity.Stock, error)
}
