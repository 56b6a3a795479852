package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID  string           `json:"product_id"`
	Location   string           `json:"location,omitempty"`
	Type       string           `json:"type"` // ENTRY | EXIT | ADJUSTMENT
	Quantity   *decimal.Decimal `json:"quantity"`
	Reason     string           `json:"reason,omitempty"`
	PurchaseID string           `json:"purchase_id,omitempty"`
	SaleID     string           `json:"sale_id,omitempty"`
	UserID     string           `json:"user_id,omitempty"`
}

// MovementResponse movimiento del ledger.
type MovementResponse struct {
	ID         string          `json:"id"`
	Seq        int64           `json:"seq"`
	ProductID  string          `json:"product_id"`
	Location   string          `json:"location"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason"`
	PurchaseID string          `json:"purchase_id,omitempty"`
	SaleID     string          `json:"sale_id,omitempty"`
	UserID     string          `json:"user_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MovementFromEntity mapea un movimiento a su respuesta.
func MovementFromEntity(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:         m.ID,
		Seq:        m.Seq,
		ProductID:  m.ProductID,
		Location:   m.Location,
		Type:       string(m.Kind),
		Quantity:   m.Quantity,
		Reason:     m.Reason,
		PurchaseID: m.PurchaseID,
		SaleID:     m.SaleID,
		UserID:     m.UserID,
		CreatedAt:  m.CreatedAt,
	}
}

// MovementsFromEntities mapea una lista (nunca devuelve nil).
func MovementsFromEntities(list []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MovementFromEntity(m))
	}
	return out
}

// StockResponse stock actual de un producto en una ubicación.
// Quantity sale del ledger; Cached es la fila del cache.
type StockResponse struct {
	ProductID string          `json:"product_id"`
	Location  string          `json:"location"`
	Quantity  decimal.Decimal `json:"quantity"`
	Cached    decimal.Decimal `json:"cached"`
}

// InventoryLevelResponse fila del resumen de stock.
type InventoryLevelResponse struct {
	ProductID string          `json:"product_id"`
	Location  string          `json:"location"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// LevelsFromEntities mapea el resumen.
func LevelsFromEntities(levels []entity.InventoryLevel) []InventoryLevelResponse {
	out := make([]InventoryLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, InventoryLevelResponse{ProductID: l.ProductID, Location: l.Location, Quantity: l.Quantity})
	}
	return out
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ProductID string          `json:"product_id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
}

// TransferResponse par de movimientos del traslado.
type TransferResponse struct {
	Exit  MovementResponse `json:"exit"`
	Entry MovementResponse `json:"entry"`
}

// ReplenishmentSuggestionDTO producto en o bajo su stock mínimo con la cantidad sugerida de pedido.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	Location           string          `json:"location,omitempty"` // vacío = todas las ubicaciones
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinimumStock       decimal.Decimal `json:"minimum_stock"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // MinimumStock * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock (>= 0)
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo de catálogo
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = mayor déficit
}

// ReindexRequest body opcional para POST /api/inventory/reindex.
type ReindexRequest struct {
	ProductID string `json:"product_id,omitempty"`
}

// DriftResponse fila del cache corregida.
type DriftResponse struct {
	ProductID string          `json:"product_id"`
	Location  string          `json:"location"`
	Cached    decimal.Decimal `json:"cached"`
	Ledger    decimal.Decimal `json:"ledger"`
}

// PurchaseLineRequest body para POST /api/inventory/purchases/lines.
// expiry_date acepta formatos comunes (2024-01-31, 2024-01-31T00:00:00Z, "Jan 31 2024").
type PurchaseLineRequest struct {
	PurchaseID string          `json:"purchase_id"`
	ProductID  string          `json:"product_id"`
	Location   string          `json:"location,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ExpiryDate string          `json:"expiry_date,omitempty"`
	BatchCode  string          `json:"batch_code,omitempty"`
	UserID     string          `json:"user_id,omitempty"`
}

// PurchaseLineResponse movimiento de entrada y lote (si la línea tiene vencimiento).
type PurchaseLineResponse struct {
	Movement MovementResponse `json:"movement"`
	Batch    *BatchResponse   `json:"batch"`
}

// SaleLineRequest body para POST /api/inventory/sales/lines.
type SaleLineRequest struct {
	SaleID    string          `json:"sale_id"`
	ProductID string          `json:"product_id"`
	Location  string          `json:"location,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UserID    string          `json:"user_id,omitempty"`
}

// ConsumptionResponse porción de un lote tomada por la venta.
type ConsumptionResponse struct {
	BatchID   string          `json:"batch_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleLineResponse resultado de descontar una línea de venta.
type SaleLineResponse struct {
	Movement           MovementResponse      `json:"movement"`
	Consumed           []ConsumptionResponse `json:"consumed"`
	UncoveredQuantity  decimal.Decimal       `json:"uncovered_quantity"`
	UncoveredUnitPrice decimal.Decimal       `json:"uncovered_unit_price"`
}
