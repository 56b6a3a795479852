package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

// DefaultExpiringDays umbral por defecto de ExpiringBatches.
const DefaultExpiringDays = 30

// CriticalDays lotes a este número de días o menos cuentan como críticos.
const CriticalDays = 3

// PriceInfo precio efectivo de un producto en una ubicación.
type PriceInfo struct {
	ProductID       string
	Location        string
	Price           decimal.Decimal
	OriginalPrice   decimal.Decimal
	DiscountPercent decimal.Decimal
	ExpiryDate      *time.Time
	BatchID         string
	HasBatch        bool
}

// BestPrice precio del lote con stock que vence primero; sin lotes, el precio de catálogo.
func (m *Manager) BestPrice(ctx context.Context, productID, location string) (*PriceInfo, error) {
	if productID == "" {
		return nil, fmt.Errorf("precio: %w", domain.ErrInvalidInput)
	}
	product, err := m.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	location = entity.NormalizeLocation(location)

	b, err := m.repos.Batches.FirstAvailable(ctx, productID, location)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return &PriceInfo{
			ProductID:       productID,
			Location:        location,
			Price:           product.SalePrice,
			OriginalPrice:   product.SalePrice,
			DiscountPercent: decimal.Zero,
		}, nil
	}
	expiry := b.ExpiryDate
	return &PriceInfo{
		ProductID:       productID,
		Location:        location,
		Price:           b.CurrentPrice,
		OriginalPrice:   b.OriginalSalePrice,
		DiscountPercent: b.DiscountPercent,
		ExpiryDate:      &expiry,
		BatchID:         b.ID,
		HasBatch:        true,
	}, nil
}

// ExpiringBatches lotes con stock que vencen en daysThreshold días o antes (incluye vencidos).
func (m *Manager) ExpiringBatches(ctx context.Context, daysThreshold int) ([]*entity.Batch, error) {
	if daysThreshold < 0 {
		return nil, fmt.Errorf("días %d: %w", daysThreshold, domain.ErrInvalidInput)
	}
	return m.repos.Batches.ListExpiring(ctx, m.horizon(daysThreshold))
}

// CriticalCount número de lotes con stock a CriticalDays días o menos de vencer.
func (m *Manager) CriticalCount(ctx context.Context) (int, error) {
	return m.repos.Batches.CountExpiring(ctx, m.horizon(CriticalDays))
}

// ProductBatches lotes con stock de un producto; location vacío = todas las ubicaciones.
func (m *Manager) ProductBatches(ctx context.Context, productID, location string) ([]*entity.Batch, error) {
	if productID == "" {
		return nil, fmt.Errorf("lotes de producto: %w", domain.ErrInvalidInput)
	}
	if location != "" {
		location = entity.NormalizeLocation(location)
	}
	return m.repos.Batches.ListByProduct(ctx, productID, location)
}

func (m *Manager) horizon(days int) time.Time {
	return inventory.DateOnly(m.now()).AddDate(0, 0, days)
}
