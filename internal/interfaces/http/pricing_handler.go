package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/pricing"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// PricingHandler precio efectivo para líneas de venta.
type PricingHandler struct {
	resolver *pricing.Resolver
	log      *logger.Logger
}

// NewPricingHandler construye el handler.
func NewPricingHandler(resolver *pricing.Resolver, log *logger.Logger) *PricingHandler {
	return &PricingHandler{resolver: resolver, log: log}
}

// Quote godoc
// @Summary      Precio efectivo de un producto
// @Description  Precio del lote con stock que vence primero; sin lotes, el precio de catálogo.
// @Tags         pricing
// @Produce      json
// @Param        productId  path   string  true   "Producto"
// @Param        location   query  string  false  "Ubicación (default)"
// @Success      200  {object}  dto.PriceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pricing/{productId} [get]
func (h *PricingHandler) Quote(c *fiber.Ctx) error {
	info, err := h.resolver.Quote(c.UserContext(), c.Params("productId"), c.Query("location"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	resp := dto.PriceResponse{
		ProductID:       info.ProductID,
		Location:        info.Location,
		Price:           info.Price,
		OriginalPrice:   info.OriginalPrice,
		DiscountPercent: info.DiscountPercent,
		BatchID:         info.BatchID,
		HasBatch:        info.HasBatch,
	}
	if info.ExpiryDate != nil {
		s := info.ExpiryDate.Format(time.DateOnly)
		resp.ExpiryDate = &s
	}
	return c.JSON(resp)
}
