// Package bootstrap arma las dependencias de la aplicación a partir de la configuración.
// Lo comparten el servidor HTTP y la CLI de operación.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/application/ports"
	"github.com/jhoicas/inventario-lotes/internal/application/pricing"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/notify"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/inventario-lotes/internal/infrastructure/redis"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/inventario-lotes/internal/interfaces/http"
	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// Job names para el scheduler y las métricas.
const (
	JobReprice      = "reprice"
	JobExpiryAlerts = "expiry_alerts"
)

// Container dependencias construidas.
type Container struct {
	Config *config.Config
	Log    *logger.Logger

	TxRunner inventory.TxRunner
	Repos    repository.Repos
	Memory   *memory.Store // nil con STORE_DRIVER=postgres
	Notifier *notify.Bus
	Cooldown ports.Cooldown

	RegisterMovement *inventory.RegisterMovementUseCase
	StockQuery       *inventory.StockQueryUseCase
	Transfer         *inventory.TransferUseCase
	LowStock         *inventory.LowStockUseCase
	Reindex          *inventory.ReindexUseCase
	Intake           *inventory.IntakeUseCase
	Batches          *batch.Manager
	Pricing          *pricing.Resolver
	ExpiryAlerts     *batch.ExpiryAlerts

	closers []func()
}

// New construye el contenedor según STORE_DRIVER y REDIS_ADDR.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Log: log}

	var notifications repository.NotificationRepository
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore()
		if cfg.Store.SeedFile != "" {
			if err := seedFromFile(store, cfg.Store.SeedFile, log); err != nil {
				return nil, err
			}
		}
		c.Memory = store
		c.TxRunner = memory.NewTxRunner(store)
		c.Repos = store.Repos()
		notifications = store.NotificationRepository()
	default:
		if cfg.DB.AutoMigrate {
			version, err := postgres.Migrate(cfg.DB.ConnectionString())
			if err != nil {
				return nil, err
			}
			log.Info().Uint("version", version).Msg("migraciones aplicadas")
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.closers = append(c.closers, pool.Close)
		c.TxRunner = postgres.NewTxRunner(pool)
		c.Repos = postgres.NewRepos(pool)
		notifications = postgres.NewNotificationRepository(pool)
	}

	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, func() { _ = client.Close() })
		c.Cooldown = infraredis.NewCooldown(client)
	} else {
		c.Cooldown = memory.NewCooldown(nil)
	}

	c.Notifier = notify.NewBus(notifications, log.Named("notify"))
	c.wire()
	return c, nil
}

// NewWithStore contenedor en memoria sobre un store existente (pruebas y herramientas).
func NewWithStore(cfg *config.Config, log *logger.Logger, store *memory.Store) *Container {
	c := &Container{
		Config:   cfg,
		Log:      log,
		Memory:   store,
		TxRunner: memory.NewTxRunner(store),
		Repos:    store.Repos(),
		Cooldown: memory.NewCooldown(nil),
	}
	c.Notifier = notify.NewBus(store.NotificationRepository(), log.Named("notify"))
	c.wire()
	return c
}

func (c *Container) wire() {
	cfg := c.Config
	alerts := inventory.NewLowStockAlerter(c.Notifier, c.Cooldown, cfg.Jobs.LowStockCooldown, c.Log.Named("low_stock"))
	c.RegisterMovement = inventory.NewRegisterMovementUseCase(c.TxRunner, alerts, nil)
	c.StockQuery = inventory.NewStockQueryUseCase(c.Repos)
	c.Transfer = inventory.NewTransferUseCase(c.TxRunner, c.RegisterMovement)
	c.LowStock = inventory.NewLowStockUseCase(c.Repos)
	c.Reindex = inventory.NewReindexUseCase(c.TxRunner, c.Log.Named("reindex"), nil)
	c.Batches = batch.NewManager(c.TxRunner, c.Repos, c.Log.Named("batches"),
		batch.WithSweepWorkers(cfg.Jobs.SweepWorkers))
	c.Intake = inventory.NewIntakeUseCase(c.TxRunner, c.RegisterMovement, c.Batches)
	c.Pricing = pricing.NewResolver(c.Batches)
	c.ExpiryAlerts = batch.NewExpiryAlerts(c.Repos, c.Notifier, c.Cooldown,
		cfg.Jobs.ExpiryAlertDays, cfg.Jobs.ExpiryAlertCooldown, c.Log.Named("expiry_alerts"), nil)
}

// RouterDeps dependencias del router HTTP.
func (c *Container) RouterDeps() httpRouter.RouterDeps {
	return httpRouter.RouterDeps{
		AppName:          c.Config.App.Name,
		RegisterMovement: c.RegisterMovement,
		StockQuery:       c.StockQuery,
		Transfer:         c.Transfer,
		LowStock:         c.LowStock,
		Reindex:          c.Reindex,
		Intake:           c.Intake,
		Batches:          c.Batches,
		Pricing:          c.Pricing,
		Notifications:    c.Notifier,
		Log:              c.Log.Named("http"),
	}
}

// RepriceJob barrido de descuentos automáticos.
func (c *Container) RepriceJob(ctx context.Context) error {
	_, err := c.Batches.RepriceAll(ctx)
	return err
}

// ExpiryAlertsJob alertas de vencimiento.
func (c *Container) ExpiryAlertsJob(ctx context.Context) error {
	_, err := c.ExpiryAlerts.Run(ctx)
	return err
}

// Schedule registra las tareas periódicas.
func (c *Container) Schedule(s *scheduler.Scheduler) error {
	if err := s.Add(JobReprice, c.Config.Scheduler.RepriceSpec, c.RepriceJob); err != nil {
		return err
	}
	return s.Add(JobExpiryAlerts, c.Config.Scheduler.ExpirySpec, c.ExpiryAlertsJob)
}

// Close libera conexiones en orden inverso.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func seedFromFile(store *memory.Store, path string, log *logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir catálogo %s: %w", path, err)
	}
	defer f.Close()
	n, err := store.LoadProducts(f)
	if err != nil {
		return err
	}
	log.Info().Int("products", n).Str("file", path).Msg("catálogo en memoria cargado")
	return nil
}
