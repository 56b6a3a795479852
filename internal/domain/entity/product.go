package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El catálogo es externo: el motor solo lee
// CostPrice, SalePrice y MinimumStock. El stock no vive aquí; se deriva del ledger.
type Product struct {
	ID           string
	SKU          string
	Name         string
	CostPrice    decimal.Decimal // costo de catálogo
	SalePrice    decimal.Decimal // precio de venta de catálogo
	MinimumStock decimal.Decimal // umbral de stock bajo (0 = sin alerta)
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
