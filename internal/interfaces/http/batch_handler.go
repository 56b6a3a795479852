package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// BatchHandler lotes con vencimiento, descuentos y reportes.
type BatchHandler struct {
	manager *batch.Manager
	log     *logger.Logger
}

// NewBatchHandler construye el handler.
func NewBatchHandler(manager *batch.Manager, log *logger.Logger) *BatchHandler {
	return &BatchHandler{manager: manager, log: log}
}

// Receive godoc
// @Summary      Recibir un lote
// @Description  Fusiona con un lote existente del mismo código o, sin código, del mismo vencimiento.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveBatchRequest  true  "product_id, quantity, expiry_date, purchase_price"
// @Success      201  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	expiry, err := dto.ParseExpiryDate(in.ExpiryDate)
	if err != nil {
		return validation(c, err.Error())
	}
	if expiry == nil {
		return validation(c, "expiry_date es obligatorio")
	}
	b, err := h.manager.Receive(c.UserContext(), batch.ReceiveInput{
		ProductID:     in.ProductID,
		Location:      in.Location,
		BatchCode:     in.BatchCode,
		Quantity:      in.Quantity,
		ExpiryDate:    expiry,
		PurchasePrice: in.PurchasePrice,
		PurchaseID:    in.PurchaseID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BatchFromEntity(b))
}

// Expiring godoc
// @Summary      Lotes que vencen dentro de N días
// @Tags         batches
// @Produce      json
// @Param        days  query  int  false  "Días (default 30)"
// @Success      200  {array}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/batches/expiring [get]
func (h *BatchHandler) Expiring(c *fiber.Ctx) error {
	days, err := queryInt(c, "days", batch.DefaultExpiringDays)
	if err != nil {
		return validation(c, "days debe ser un entero")
	}
	list, err := h.manager.ExpiringBatches(c.UserContext(), days)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.BatchesFromEntities(list))
}

// CriticalCount godoc
// @Summary      Cantidad de lotes que vencen en 3 días o menos
// @Tags         batches
// @Produce      json
// @Success      200  {object}  dto.CountResponse
// @Router       /api/batches/critical-count [get]
func (h *BatchHandler) CriticalCount(c *fiber.Ctx) error {
	n, err := h.manager.CriticalCount(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.CountResponse{Count: n})
}

// ProductBatches godoc
// @Summary      Lotes con stock de un producto en orden de vencimiento
// @Tags         batches
// @Produce      json
// @Param        productId  path   string  true   "Producto"
// @Param        location   query  string  false  "Ubicación; vacío = todas"
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/batches/product/{productId} [get]
func (h *BatchHandler) ProductBatches(c *fiber.Ctx) error {
	list, err := h.manager.ProductBatches(c.UserContext(), c.Params("productId"), c.Query("location"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.BatchesFromEntities(list))
}

// SetDiscount godoc
// @Summary      Fijar descuento manual
// @Description  0 vuelve al descuento automático por días al vencimiento.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Lote"
// @Param        body  body  dto.SetDiscountRequest  true  "discount_percent 0..100"
// @Success      200  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/discount [put]
func (h *BatchHandler) SetDiscount(c *fiber.Ctx) error {
	var in dto.SetDiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.DiscountPercent == nil {
		return validation(c, "discount_percent es obligatorio")
	}
	b, err := h.manager.SetManualDiscount(c.UserContext(), c.Params("id"), *in.DiscountPercent)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.BatchFromEntity(b))
}

// Reprice godoc
// @Summary      Recalcular descuentos automáticos de todos los lotes
// @Tags         batches
// @Produce      json
// @Success      200  {object}  dto.CountResponse
// @Router       /api/batches/reprice [post]
func (h *BatchHandler) Reprice(c *fiber.Ctx) error {
	n, err := h.manager.RepriceAll(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.CountResponse{Count: n})
}

// BackfillPrices godoc
// @Summary      Completar precio original de lotes antiguos con el precio de catálogo
// @Tags         batches
// @Produce      json
// @Success      200  {object}  dto.CountResponse
// @Router       /api/batches/backfill-prices [post]
func (h *BatchHandler) BackfillPrices(c *fiber.Ctx) error {
	n, err := h.manager.BackfillOriginalPrices(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.CountResponse{Count: n})
}
