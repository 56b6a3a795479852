package entity

import "github.com/shopspring/decimal"

// InventoryLevel es el stock de un producto en una ubicación, derivado del ledger.
type InventoryLevel struct {
	ProductID string
	Location  string
	Quantity  decimal.Decimal
}
