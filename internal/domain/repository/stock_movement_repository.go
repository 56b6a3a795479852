package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// MovementFilter filtros opcionales sobre el ledger; campos vacíos no filtran.
type MovementFilter struct {
	ProductID string
	Location  string
	Kind      entity.MovementKind
	From      *time.Time
	To        *time.Time
}

// StockMovementRepository puerto del ledger (solo inserción).
type StockMovementRepository interface {
	// Create asigna ID, Seq y CreatedAt cuando vienen vacíos.
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByKey movimientos de un producto+ubicación en orden de Seq ascendente.
	ListByKey(ctx context.Context, productID, location string) ([]*entity.StockMovement, error)
	// ListForFold movimientos filtrados en orden de Seq ascendente.
	ListForFold(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// List para auditoría: más recientes primero.
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.StockMovement, error)
}
