package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
)

// BestPricer fuente del precio efectivo por lote.
type BestPricer interface {
	BestPrice(ctx context.Context, productID, location string) (*batch.PriceInfo, error)
}

// Resolver es el único camino por el que una línea de venta obtiene su precio unitario.
type Resolver struct {
	batches BestPricer
}

// NewResolver construye el resolvedor de precios.
func NewResolver(batches BestPricer) *Resolver {
	return &Resolver{batches: batches}
}

// ResolvePrice precio unitario para vender el producto en la ubicación.
func (r *Resolver) ResolvePrice(ctx context.Context, productID, location string) (decimal.Decimal, error) {
	info, err := r.batches.BestPrice(ctx, productID, location)
	if err != nil {
		return decimal.Zero, err
	}
	return info.Price, nil
}

// Quote precio completo para mostrar (original vs con descuento, vencimiento del lote).
func (r *Resolver) Quote(ctx context.Context, productID, location string) (*batch.PriceInfo, error) {
	return r.batches.BestPrice(ctx, productID, location)
}
