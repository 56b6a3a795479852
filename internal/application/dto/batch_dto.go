package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// ReceiveBatchRequest body para POST /api/batches.
type ReceiveBatchRequest struct {
	ProductID     string          `json:"product_id"`
	Location      string          `json:"location,omitempty"`
	BatchCode     string          `json:"batch_code,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	ExpiryDate    string          `json:"expiry_date,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseID    string          `json:"purchase_id,omitempty"`
}

// SetDiscountRequest body para PUT /api/batches/:id/discount. 0 vuelve al descuento automático.
type SetDiscountRequest struct {
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

// BatchResponse lote con su estado de precio.
type BatchResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Location          string          `json:"location"`
	BatchCode         string          `json:"batch_code,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	ExpiryDate        string          `json:"expiry_date"` // YYYY-MM-DD
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	OriginalSalePrice decimal.Decimal `json:"original_sale_price"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	ManualDiscount    bool            `json:"manual_discount"`
	PurchaseID        string          `json:"purchase_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BatchFromEntity mapea un lote; nil devuelve nil.
func BatchFromEntity(b *entity.Batch) *BatchResponse {
	if b == nil {
		return nil
	}
	return &BatchResponse{
		ID:                b.ID,
		ProductID:         b.ProductID,
		Location:          b.Location,
		BatchCode:         b.BatchCode,
		Quantity:          b.Quantity,
		ExpiryDate:        b.ExpiryDate.Format(time.DateOnly),
		PurchasePrice:     b.PurchasePrice,
		OriginalSalePrice: b.OriginalSalePrice,
		CurrentPrice:      b.CurrentPrice,
		DiscountPercent:   b.DiscountPercent,
		ManualDiscount:    b.ManualDiscount,
		PurchaseID:        b.PurchaseID,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// BatchesFromEntities mapea una lista (nunca devuelve nil).
func BatchesFromEntities(list []*entity.Batch) []BatchResponse {
	out := make([]BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, *BatchFromEntity(b))
	}
	return out
}

// PriceResponse precio efectivo de un producto en una ubicación.
type PriceResponse struct {
	ProductID       string          `json:"product_id"`
	Location        string          `json:"location"`
	Price           decimal.Decimal `json:"price"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	ExpiryDate      *string         `json:"expiry_date"`
	BatchID         string          `json:"batch_id,omitempty"`
	HasBatch        bool            `json:"has_batch"`
}

// CountResponse respuesta de conteos y barridos.
type CountResponse struct {
	Count int `json:"count"`
}

// ParseExpiryDate interpreta una fecha de vencimiento en formatos comunes. Vacío = nil.
// Fechas ambiguas día/mes (01/02/2024) se rechazan.
func ParseExpiryDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := dateparse.ParseStrict(s)
	if err != nil {
		return nil, fmt.Errorf("fecha de vencimiento %q: %w", s, err)
	}
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &date, nil
}
