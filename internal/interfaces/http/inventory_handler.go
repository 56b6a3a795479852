package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP del ledger, stock, traslados e integración compra/venta.
type InventoryHandler struct {
	record   *inventory.RegisterMovementUseCase
	query    *inventory.StockQueryUseCase
	transfer *inventory.TransferUseCase
	lowStock *inventory.LowStockUseCase
	reindex  *inventory.ReindexUseCase
	intake   *inventory.IntakeUseCase
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	record *inventory.RegisterMovementUseCase,
	query *inventory.StockQueryUseCase,
	transfer *inventory.TransferUseCase,
	lowStock *inventory.LowStockUseCase,
	reindex *inventory.ReindexUseCase,
	intake *inventory.IntakeUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{
		record:   record,
		query:    query,
		transfer: transfer,
		lowStock: lowStock,
		reindex:  reindex,
		intake:   intake,
		log:      log,
	}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, location, type (ENTRY|EXIT|ADJUSTMENT), quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.record.Record(c.UserContext(), inventory.RecordInput{
		ProductID:  in.ProductID,
		Location:   in.Location,
		Kind:       entity.MovementKind(in.Type),
		Quantity:   in.Quantity,
		Reason:     in.Reason,
		PurchaseID: in.PurchaseID,
		SaleID:     in.SaleID,
		UserID:     in.UserID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementFromEntity(m))
}

// ListMovements godoc
// @Summary      Auditoría del ledger
// @Tags         inventory
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        location    query  string  false  "Ubicación"
// @Param        type        query  string  false  "ENTRY|EXIT|ADJUSTMENT"
// @Param        from        query  string  false  "Desde (fecha/hora)"
// @Param        to          query  string  false  "Hasta (fecha/hora)"
// @Param        limit       query  int     false  "Máximo 500 (default 50)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return validation(c, "paginación inválida")
	}
	page.DefaultPage()
	page.Limit = min(page.Limit, inventory.MaxMovementsLimit)
	from, err := queryTime(c, "from")
	if err != nil {
		return validation(c, "from inválido")
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return validation(c, "to inválido")
	}
	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Location:  c.Query("location"),
		Kind:      entity.MovementKind(c.Query("type")),
		From:      from,
		To:        to,
	}
	list, err := h.query.ListMovements(c.UserContext(), filter, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"items": dto.MovementsFromEntities(list),
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetStock godoc
// @Summary      Stock actual de un producto en una ubicación
// @Tags         inventory
// @Produce      json
// @Param        productId  path   string  true   "Producto"
// @Param        location   query  string  false  "Ubicación (default)"
// @Description  quantity sale del ledger; cached es el valor del cache (difieren solo con desvío).
// @Success      200  {object}  dto.StockResponse
// @Router       /api/inventory/stock/{productId} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	productID := c.Params("productId")
	location := entity.NormalizeLocation(c.Query("location"))
	qty, err := h.query.CurrentStock(c.UserContext(), productID, location)
	if err != nil {
		return respondError(c, h.log, err)
	}
	cached, err := h.query.CachedStock(c.UserContext(), productID, location)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !cached.Equal(qty) {
		h.log.Warn().Str("product_id", productID).Str("location", location).
			Str("ledger", qty.String()).Str("cached", cached.String()).
			Msg("cache de stock desviado del ledger")
	}
	return c.JSON(dto.StockResponse{ProductID: productID, Location: location, Quantity: qty, Cached: cached})
}

// Summary godoc
// @Summary      Resumen de stock por producto y ubicación (pliegue del ledger)
// @Tags         inventory
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        location    query  string  false  "Ubicación"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/summary [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	levels, err := h.query.Summary(c.UserContext(), inventory.SummaryFilter{
		ProductID: c.Query("product_id"),
		Location:  c.Query("location"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"items": dto.LevelsFromEntities(levels)})
}

// Transfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  Salida en origen y entrada en destino en una sola transacción. Con stock insuficiente no escribe nada.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, from, to, quantity"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.transfer.Transfer(c.UserContext(), inventory.TransferInput{
		ProductID: in.ProductID,
		From:      in.From,
		To:        in.To,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		UserID:    in.UserID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		Exit:  dto.MovementFromEntity(res.Exit),
		Entry: dto.MovementFromEntity(res.Entry),
	})
}

// GetLowStock godoc
// @Summary      Productos en o bajo su stock mínimo
// @Description  Incluye la cantidad sugerida de pedido (hasta 1.5 veces el mínimo), ordenados por déficit.
// @Tags         inventory
// @Produce      json
// @Param        location  query  string  false  "Filtrar por ubicación. Vacío = stock global."
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	list, err := h.lowStock.LowStock(c.UserContext(), c.Query("location"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// Reindex godoc
// @Summary      Reconstruir el cache de stock desde el ledger
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReindexRequest  false  "product_id opcional"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/reindex [post]
func (h *InventoryHandler) Reindex(c *fiber.Ctx) error {
	var in dto.ReindexRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	drifts, err := h.reindex.Reindex(c.UserContext(), in.ProductID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.DriftResponse, 0, len(drifts))
	for _, d := range drifts {
		out = append(out, dto.DriftResponse{ProductID: d.ProductID, Location: d.Location, Cached: d.Cached, Ledger: d.Ledger})
	}
	return c.JSON(fiber.Map{"corrected": len(out), "drifts": out})
}

// PurchaseLine godoc
// @Summary      Recibir una línea de compra
// @Description  Entrada al ledger y, si trae vencimiento, creación o fusión del lote, en una transacción.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PurchaseLineRequest  true  "purchase_id, product_id, quantity, unit_cost, expiry_date"
// @Success      201  {object}  dto.PurchaseLineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/purchases/lines [post]
func (h *InventoryHandler) PurchaseLine(c *fiber.Ctx) error {
	var in dto.PurchaseLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	expiry, err := dto.ParseExpiryDate(in.ExpiryDate)
	if err != nil {
		return validation(c, err.Error())
	}
	res, err := h.intake.ReceivePurchaseLine(c.UserContext(), inventory.PurchaseLineInput{
		PurchaseID: in.PurchaseID,
		ProductID:  in.ProductID,
		Location:   in.Location,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		ExpiryDate: expiry,
		BatchCode:  in.BatchCode,
		UserID:     in.UserID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PurchaseLineResponse{
		Movement: dto.MovementFromEntity(res.Movement),
		Batch:    dto.BatchFromEntity(res.Batch),
	})
}

// SaleLine godoc
// @Summary      Descontar una línea de venta
// @Description  Salida al ledger y consumo de lotes por vencimiento más próximo.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleLineRequest  true  "sale_id, product_id, quantity"
// @Success      201  {object}  dto.SaleLineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/sales/lines [post]
func (h *InventoryHandler) SaleLine(c *fiber.Ctx) error {
	var in dto.SaleLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.intake.DepleteSaleLine(c.UserContext(), inventory.SaleLineInput{
		SaleID:    in.SaleID,
		ProductID: in.ProductID,
		Location:  in.Location,
		Quantity:  in.Quantity,
		UserID:    in.UserID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	consumed := make([]dto.ConsumptionResponse, 0, len(res.Consumed))
	for _, cons := range res.Consumed {
		consumed = append(consumed, dto.ConsumptionResponse{BatchID: cons.BatchID, Quantity: cons.Quantity, UnitPrice: cons.UnitPrice})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleLineResponse{
		Movement:           dto.MovementFromEntity(res.Movement),
		Consumed:           consumed,
		UncoveredQuantity:  res.UncoveredQuantity,
		UncoveredUnitPrice: res.UncoveredUnitPrice,
	})
}
