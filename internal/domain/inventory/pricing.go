package inventory

import (
	"math"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DateOnly devuelve la medianoche UTC de la fecha calendario de t (en su propia zona).
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntilExpiry días calendario entre hoy y el vencimiento; negativo si ya venció.
func DaysUntilExpiry(expiry, today time.Time) int {
	diff := DateOnly(expiry).Sub(DateOnly(today))
	return int(math.Ceil(diff.Hours() / 24))
}

// DiscountForDays tabla de descuento automático por cercanía al vencimiento:
// <=0 → 100, 1-3 → 50, 4-7 → 30, 8-15 → 20, 16-30 → 10, >30 → 0.
func DiscountForDays(days int) decimal.Decimal {
	switch {
	case days <= 0:
		return decimal.NewFromInt(100)
	case days <= 3:
		return decimal.NewFromInt(50)
	case days <= 7:
		return decimal.NewFromInt(30)
	case days <= 15:
		return decimal.NewFromInt(20)
	case days <= 30:
		return decimal.NewFromInt(10)
	}
	return decimal.Zero
}

// ValidDiscount indica si el porcentaje está en [0, 100].
func ValidDiscount(percent decimal.Decimal) bool {
	return !percent.IsNegative() && percent.LessThanOrEqual(hundred)
}

// MarginPrice aplica el descuento sobre el margen (original - compra), nunca sobre el costo.
// Sin descuento devuelve el precio original intacto.
func MarginPrice(original, purchase, discountPercent decimal.Decimal) decimal.Decimal {
	if !discountPercent.GreaterThan(decimal.Zero) {
		return original
	}
	margin := original.Sub(purchase)
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return purchase.Add(margin.Mul(factor)).Round(2)
}

// RefreshBatchPrice se ejecuta en cada guardado de lote: recalcula el descuento automático
// (salvo descuento manual), completa OriginalSalePrice si está en cero y reprecia.
// Sin precio original conocido CurrentPrice queda como estaba.
func RefreshBatchPrice(b *entity.Batch, today time.Time, catalogSalePrice decimal.Decimal) {
	if !b.ManualDiscount {
		b.DiscountPercent = DiscountForDays(DaysUntilExpiry(b.ExpiryDate, today))
	}
	if b.OriginalSalePrice.IsZero() {
		b.OriginalSalePrice = catalogSalePrice
	}
	if b.OriginalSalePrice.IsZero() {
		return
	}
	b.CurrentPrice = MarginPrice(b.OriginalSalePrice, b.PurchasePrice, b.DiscountPercent)
}
