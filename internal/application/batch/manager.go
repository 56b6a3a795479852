package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/application/ports"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
	"github.com/jhoicas/inventario-lotes/pkg/metrics"
)

// Manager administra lotes con vencimiento: recepción con fusión, consumo FIFO por vencimiento,
// descuentos dinámicos o manuales y consultas de vencimiento.
type Manager struct {
	txRunner     TxRunner
	repos        repository.Repos
	log          *logger.Logger
	now          ports.Clock
	sweepWorkers int
}

// Option configura el Manager.
type Option func(*Manager)

// WithClock reemplaza la fuente de tiempo.
func WithClock(now ports.Clock) Option {
	return func(m *Manager) { m.now = now }
}

// WithSweepWorkers tamaño del pool del barrido de descuentos.
func WithSweepWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.sweepWorkers = n
		}
	}
}

// NewManager construye el administrador de lotes. repos son los repositorios fuera de transacción.
func NewManager(txRunner TxRunner, repos repository.Repos, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		txRunner:     txRunner,
		repos:        repos,
		log:          log,
		now:          time.Now,
		sweepWorkers: 4,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ReceiveInput línea de compra para lotes. ExpiryDate nil = producto no perecedero.
type ReceiveInput struct {
	ProductID     string
	Location      string
	BatchCode     string
	Quantity      decimal.Decimal
	ExpiryDate    *time.Time
	PurchasePrice decimal.Decimal
	PurchaseID    string
}

// Consumption porción tomada de un lote.
type Consumption struct {
	BatchID   string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Receive crea o fusiona el lote de una línea de compra en su propia transacción.
// Devuelve nil si la línea no trae vencimiento.
func (m *Manager) Receive(ctx context.Context, in ReceiveInput) (*entity.Batch, error) {
	var out *entity.Batch
	run := func() error {
		return m.txRunner.Run(ctx, func(repos repository.Repos) error {
			b, err := m.ReceiveInTx(ctx, repos, in)
			out = b
			return err
		})
	}
	err := run()
	if errors.Is(err, domain.ErrDuplicate) {
		// otra tx creó el mismo lote entre la búsqueda y el insert: reintentar como fusión
		err = run()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReceiveInTx igual que Receive pero con los repositorios de la transacción del llamador.
func (m *Manager) ReceiveInTx(ctx context.Context, repos repository.Repos, in ReceiveInput) (*entity.Batch, error) {
	if in.ProductID == "" || !in.Quantity.GreaterThan(decimal.Zero) || in.PurchasePrice.IsNegative() {
		return nil, fmt.Errorf("recibir lote: %w", domain.ErrInvalidInput)
	}
	// sin vencimiento no hay lote: ni siquiera se consulta el catálogo
	if in.ExpiryDate == nil {
		return nil, nil
	}
	product, err := repos.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
	}

	location := entity.NormalizeLocation(in.Location)
	code := strings.TrimSpace(in.BatchCode)
	expiry := inventory.DateOnly(*in.ExpiryDate)

	var existing *entity.Batch
	if code != "" {
		existing, err = repos.Batches.FindByCodeForUpdate(ctx, product.ID, location, code)
	} else {
		existing, err = repos.Batches.FindByExpiryForUpdate(ctx, product.ID, location, expiry)
	}
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Quantity = existing.Quantity.Add(in.Quantity)
		if code != "" {
			existing.BatchCode = code
		}
		if err := m.save(ctx, repos, existing, product, false); err != nil {
			return nil, err
		}
		return existing, nil
	}

	b := &entity.Batch{
		ID:                uuid.New().String(),
		ProductID:         product.ID,
		Location:          location,
		BatchCode:         code,
		Quantity:          in.Quantity,
		ExpiryDate:        expiry,
		PurchasePrice:     in.PurchasePrice,
		OriginalSalePrice: product.SalePrice,
		CurrentPrice:      product.SalePrice,
		DiscountPercent:   decimal.Zero,
		PurchaseID:        in.PurchaseID,
	}
	if err := m.save(ctx, repos, b, product, true); err != nil {
		return nil, err
	}
	return b, nil
}

// save aplica el hook de guardado y persiste.
func (m *Manager) save(ctx context.Context, repos repository.Repos, b *entity.Batch, product *entity.Product, create bool) error {
	now := m.now()
	catalogPrice := decimal.Zero
	if product != nil {
		catalogPrice = product.SalePrice
	}
	inventory.RefreshBatchPrice(b, now, catalogPrice)
	b.UpdatedAt = now
	if create {
		b.CreatedAt = now
		return repos.Batches.Create(ctx, b)
	}
	return repos.Batches.Update(ctx, b)
}

// productFor carga el producto del lote solo cuando el hook lo necesita (precio original en cero).
func productFor(ctx context.Context, repos repository.Repos, b *entity.Batch) (*entity.Product, error) {
	if !b.OriginalSalePrice.IsZero() {
		return nil, nil
	}
	return repos.Products.GetByID(ctx, b.ProductID)
}

// SetManualDiscount fija un porcentaje manual (0 vuelve al automático) y reprecia.
func (m *Manager) SetManualDiscount(ctx context.Context, batchID string, percent decimal.Decimal) (*entity.Batch, error) {
	if !inventory.ValidDiscount(percent) {
		return nil, fmt.Errorf("descuento %s fuera de [0,100]: %w", percent, domain.ErrInvalidInput)
	}
	var out *entity.Batch
	err := m.txRunner.Run(ctx, func(repos repository.Repos) error {
		b, err := repos.Batches.GetByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("lote %s: %w", batchID, domain.ErrNotFound)
		}
		b.DiscountPercent = percent
		b.ManualDiscount = percent.GreaterThan(decimal.Zero)
		product, err := productFor(ctx, repos, b)
		if err != nil {
			return err
		}
		if err := m.save(ctx, repos, b, product, false); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ConsumeFIFO descuenta qty de los lotes del producto en la ubicación, primero los que vencen antes.
// Es best effort: si los lotes no alcanzan, consume lo que hay y no falla.
func (m *Manager) ConsumeFIFO(ctx context.Context, productID, location string, qty decimal.Decimal) ([]Consumption, error) {
	var out []Consumption
	err := m.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		out, _, err = m.ConsumeFIFOInTx(ctx, repos, productID, location, qty)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ConsumeFIFOInTx igual que ConsumeFIFO en la transacción del llamador; devuelve también lo no cubierto.
func (m *Manager) ConsumeFIFOInTx(ctx context.Context, repos repository.Repos, productID, location string, qty decimal.Decimal) ([]Consumption, decimal.Decimal, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return nil, decimal.Zero, fmt.Errorf("consumir lotes: %w", domain.ErrInvalidInput)
	}
	product, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if product == nil {
		return nil, decimal.Zero, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	location = entity.NormalizeLocation(location)

	batches, err := repos.Batches.ListAvailableForUpdate(ctx, productID, location)
	if err != nil {
		return nil, decimal.Zero, err
	}
	takes, remaining := inventory.PlanConsumption(batches, qty)

	out := make([]Consumption, 0, len(takes))
	for _, t := range takes {
		b := t.Batch
		b.Quantity = b.Quantity.Sub(t.Quantity)
		if b.Quantity.IsZero() {
			if err := repos.Batches.Delete(ctx, b.ID); err != nil {
				return nil, decimal.Zero, err
			}
		} else if err := m.save(ctx, repos, b, product, false); err != nil {
			return nil, decimal.Zero, err
		}
		out = append(out, Consumption{BatchID: b.ID, Quantity: t.Quantity, UnitPrice: b.CurrentPrice})
		metrics.BatchUnitsConsumed.Add(t.Quantity.InexactFloat64())
	}
	return out, remaining, nil
}
