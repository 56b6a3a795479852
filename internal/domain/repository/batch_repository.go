package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// BatchRepository puerto de persistencia de lotes con vencimiento (DIP).
// Los métodos ForUpdate bloquean las filas hasta el fin de la transacción.
// Los Get/Find devuelven nil, nil cuando no hay fila.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	Update(ctx context.Context, batch *entity.Batch) error
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Batch, error)
	FindByCodeForUpdate(ctx context.Context, productID, location, batchCode string) (*entity.Batch, error)
	FindByExpiryForUpdate(ctx context.Context, productID, location string, expiry time.Time) (*entity.Batch, error)

	// ListAvailableForUpdate lotes con cantidad > 0 en orden FEFO, bloqueados.
	ListAvailableForUpdate(ctx context.Context, productID, location string) ([]*entity.Batch, error)
	// FirstAvailable el lote con stock que vence primero.
	FirstAvailable(ctx context.Context, productID, location string) (*entity.Batch, error)
	// ListByProduct lotes con stock en orden FEFO; location vacío = todas.
	ListByProduct(ctx context.Context, productID, location string) ([]*entity.Batch, error)
	// ListExpiring lotes con stock y vencimiento <= until, ascendente.
	ListExpiring(ctx context.Context, until time.Time) ([]*entity.Batch, error)
	CountExpiring(ctx context.Context, until time.Time) (int, error)

	// ListAvailableIDs IDs de todos los lotes con stock (barrido de descuentos).
	ListAvailableIDs(ctx context.Context) ([]string, error)
	// ListMissingOriginalPriceIDs IDs de lotes con OriginalSalePrice = 0.
	ListMissingOriginalPriceIDs(ctx context.Context) ([]string, error)
}
