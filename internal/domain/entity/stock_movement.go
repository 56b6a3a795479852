package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del ledger.
type MovementKind string

// Tipos de movimiento de stock.
const (
	MovementEntry      MovementKind = "ENTRY"      // entrada: suma
	MovementExit       MovementKind = "EXIT"       // salida: resta
	MovementAdjustment MovementKind = "ADJUSTMENT" // ajuste: fija el nivel absoluto
)

// Valid indica si el tipo es uno de los tres soportados.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntry, MovementExit, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement es un registro inmutable del ledger. Nunca se edita ni se borra;
// las correcciones son movimientos nuevos.
// Seq es el sustituto de orden de inserción: el pliegue ordena por Seq, no por CreatedAt.
type StockMovement struct {
	ID         string
	Seq        int64
	ProductID  string
	Location   string
	Kind       MovementKind
	Quantity   decimal.Decimal // siempre >= 0; el signo lo aplica Kind
	Reason     string
	PurchaseID string
	SaleID     string
	UserID     string
	CreatedAt  time.Time
}
