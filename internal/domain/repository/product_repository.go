package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo (DIP). El catálogo lo administra otro sistema;
// aquí solo se leen precios y stock mínimo.
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// ListWithMinimumStock productos activos con MinimumStock > 0.
	ListWithMinimumStock(ctx context.Context) ([]*entity.Product, error)
}
