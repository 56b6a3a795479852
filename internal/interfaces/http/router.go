package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/application/pricing"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
	"github.com/jhoicas/inventario-lotes/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName          string
	RegisterMovement *inventory.RegisterMovementUseCase
	StockQuery       *inventory.StockQueryUseCase
	Transfer         *inventory.TransferUseCase
	LowStock         *inventory.LowStockUseCase
	Reindex          *inventory.ReindexUseCase
	Intake           *inventory.IntakeUseCase
	Batches          *batch.Manager
	Pricing          *pricing.Resolver
	Notifications    NotificationFeed
	Log              *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	// Inventario: ledger, stock, traslados, integración compra/venta
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(
		deps.RegisterMovement, deps.StockQuery, deps.Transfer,
		deps.LowStock, deps.Reindex, deps.Intake, log,
	)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/stock/:productId", inventoryHandler.GetStock)
	invGroup.Get("/summary", inventoryHandler.Summary)
	invGroup.Post("/transfers", inventoryHandler.Transfer)
	invGroup.Get("/low-stock", inventoryHandler.GetLowStock)
	invGroup.Post("/reindex", inventoryHandler.Reindex)
	invGroup.Post("/purchases/lines", inventoryHandler.PurchaseLine)
	invGroup.Post("/sales/lines", inventoryHandler.SaleLine)

	// Lotes
	batches := api.Group("/batches")
	batchHandler := NewBatchHandler(deps.Batches, log)
	batches.Post("/", batchHandler.Receive)
	batches.Get("/expiring", batchHandler.Expiring)
	batches.Get("/critical-count", batchHandler.CriticalCount)
	batches.Get("/product/:productId", batchHandler.ProductBatches)
	batches.Put("/:id/discount", batchHandler.SetDiscount)
	batches.Post("/reprice", batchHandler.Reprice)
	batches.Post("/backfill-prices", batchHandler.BackfillPrices)

	// Precios
	pricingHandler := NewPricingHandler(deps.Pricing, log)
	api.Get("/pricing/:productId", pricingHandler.Quote)

	// Notificaciones
	if deps.Notifications != nil {
		notificationHandler := NewNotificationHandler(deps.Notifications, log)
		api.Get("/notifications", notificationHandler.List)
	}
}
