package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/application/ports"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/pkg/metrics"
)

// Motivos por defecto.
const (
	ReasonEntry      = "ENTRADA"
	ReasonExit       = "SALIDA"
	ReasonAdjustment = "AJUSTE INVENTARIO"
	ReasonTransfer   = "TRASLADO ENTRE UBICACIONES"
	ReasonPurchase   = "COMPRA PROVEEDOR"
	ReasonSale       = "VENTA"
)

// RegisterMovementUseCase agrega movimientos al ledger y actualiza el cache de stock en la misma
// transacción, con bloqueo de fila (SELECT FOR UPDATE) sobre producto+ubicación.
type RegisterMovementUseCase struct {
	txRunner TxRunner
	alerts   *LowStockAlerter
	now      ports.Clock
}

// NewRegisterMovementUseCase construye el caso de uso. now nil = time.Now.
func NewRegisterMovementUseCase(txRunner TxRunner, alerts *LowStockAlerter, now ports.Clock) *RegisterMovementUseCase {
	if now == nil {
		now = time.Now
	}
	return &RegisterMovementUseCase{txRunner: txRunner, alerts: alerts, now: now}
}

// RecordInput entrada de Record. Quantity nil se rechaza.
// ENTRY/EXIT exigen Quantity > 0; ADJUSTMENT exige Quantity >= 0 (nivel absoluto).
type RecordInput struct {
	ProductID  string
	Location   string
	Kind       entity.MovementKind
	Quantity   *decimal.Decimal
	Reason     string
	PurchaseID string
	SaleID     string
	UserID     string
}

// recorded resultado interno de recordInTx, usado para la alerta posterior al commit.
type recorded struct {
	movement *entity.StockMovement
	product  *entity.Product
	total    decimal.Decimal
}

// Record valida, escribe el movimiento y el cache en una transacción y, tras el commit,
// evalúa la alerta de stock bajo (sus fallos nunca llegan al llamador).
func (uc *RegisterMovementUseCase) Record(ctx context.Context, in RecordInput) (*entity.StockMovement, error) {
	if err := normalizeRecordInput(&in); err != nil {
		return nil, err
	}
	var rec *recorded
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		rec, err = uc.recordInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.alerts.Check(ctx, rec)
	return rec.movement, nil
}

func normalizeRecordInput(in *RecordInput) error {
	if in.ProductID == "" {
		return fmt.Errorf("producto requerido: %w", domain.ErrInvalidInput)
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("tipo de movimiento %q: %w", in.Kind, domain.ErrInvalidInput)
	}
	if in.Quantity == nil {
		return fmt.Errorf("cantidad requerida: %w", domain.ErrInvalidInput)
	}
	q := *in.Quantity
	switch in.Kind {
	case entity.MovementEntry, entity.MovementExit:
		if !q.GreaterThan(decimal.Zero) {
			return fmt.Errorf("cantidad %s debe ser > 0: %w", q, domain.ErrInvalidInput)
		}
	case entity.MovementAdjustment:
		if q.IsNegative() {
			return fmt.Errorf("ajuste %s debe ser >= 0: %w", q, domain.ErrInvalidInput)
		}
	}
	in.Location = entity.NormalizeLocation(in.Location)
	if in.Reason == "" {
		in.Reason = defaultReason(in.Kind)
	}
	return nil
}

func defaultReason(kind entity.MovementKind) string {
	switch kind {
	case entity.MovementEntry:
		return ReasonEntry
	case entity.MovementExit:
		return ReasonExit
	}
	return ReasonAdjustment
}

// recordInTx escribe sobre los repos de la tx del llamador. in debe venir normalizado.
func (uc *RegisterMovementUseCase) recordInTx(ctx context.Context, repos repository.Repos, in RecordInput) (*recorded, error) {
	product, err := repos.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
	}

	// Bloquea la fila del cache para serializar escritores del mismo producto+ubicación
	stock, err := repos.Stock.LockForUpdate(ctx, in.ProductID, in.Location)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	mov := &entity.StockMovement{
		ID:         uuid.New().String(),
		ProductID:  in.ProductID,
		Location:   in.Location,
		Kind:       in.Kind,
		Quantity:   *in.Quantity,
		Reason:     in.Reason,
		PurchaseID: in.PurchaseID,
		SaleID:     in.SaleID,
		UserID:     in.UserID,
		CreatedAt:  now,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}

	stock.Quantity = inventory.Apply(stock.Quantity, mov)
	stock.UpdatedAt = now
	if err := repos.Stock.Upsert(ctx, stock); err != nil {
		return nil, err
	}

	total, err := repos.Stock.TotalByProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	metrics.MovementsRecorded.WithLabelValues(string(in.Kind)).Inc()
	return &recorded{movement: mov, product: product, total: total}, nil
}
