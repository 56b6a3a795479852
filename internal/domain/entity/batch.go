package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch es un lote con fecha de vencimiento de un producto en una ubicación.
// CurrentPrice se deriva de OriginalSalePrice, PurchasePrice y DiscountPercent;
// con ManualDiscount el porcentaje queda fijo hasta que se limpie.
type Batch struct {
	ID                string
	ProductID         string
	Location          string
	BatchCode         string    // opcional; vacío = sin código
	Quantity          decimal.Decimal
	ExpiryDate        time.Time // fecha (medianoche)
	PurchasePrice     decimal.Decimal
	OriginalSalePrice decimal.Decimal // precio de catálogo al crear el lote
	CurrentPrice      decimal.Decimal
	DiscountPercent   decimal.Decimal // 0..100
	ManualDiscount    bool
	PurchaseID        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasStock indica si el lote todavía tiene unidades.
func (b *Batch) HasStock() bool {
	return b.Quantity.GreaterThan(decimal.Zero)
}
