package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock es la caché desnormalizada del stock de un producto en una ubicación.
// Se actualiza con cada movimiento y siempre puede reconstruirse plegando el ledger.
type Stock struct {
	ProductID string
	Location  string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
