package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// PurchaseLineInput línea de compra recibida. ExpiryDate nil = producto no perecedero (sin lote).
type PurchaseLineInput struct {
	PurchaseID string
	ProductID  string
	Location   string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	ExpiryDate *time.Time
	BatchCode  string
	UserID     string
}

// PurchaseLineResult movimiento de entrada y el lote creado o fusionado (nil sin vencimiento).
type PurchaseLineResult struct {
	Movement *entity.StockMovement
	Batch    *entity.Batch
}

// SaleLineInput línea de venta completada.
type SaleLineInput struct {
	SaleID    string
	ProductID string
	Location  string
	Quantity  decimal.Decimal
	UserID    string
}

// SaleLineResult salida registrada, porciones de lote consumidas y el remanente no cubierto por
// lotes, valorizado al precio de catálogo.
type SaleLineResult struct {
	Movement           *entity.StockMovement
	Consumed           []batch.Consumption
	UncoveredQuantity  decimal.Decimal
	UncoveredUnitPrice decimal.Decimal
}

// IntakeUseCase integra compras y ventas: ledger y lotes en la misma transacción.
type IntakeUseCase struct {
	txRunner TxRunner
	recorder *RegisterMovementUseCase
	batches  *batch.Manager
}

// NewIntakeUseCase construye el caso de uso.
func NewIntakeUseCase(txRunner TxRunner, recorder *RegisterMovementUseCase, batches *batch.Manager) *IntakeUseCase {
	return &IntakeUseCase{txRunner: txRunner, recorder: recorder, batches: batches}
}

// ReceivePurchaseLine crea o fusiona el lote y registra la ENTRY "COMPRA PROVEEDOR".
func (uc *IntakeUseCase) ReceivePurchaseLine(ctx context.Context, in PurchaseLineInput) (*PurchaseLineResult, error) {
	if in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("costo unitario %s: %w", in.UnitCost, domain.ErrInvalidInput)
	}
	qty := in.Quantity
	rec := RecordInput{
		ProductID:  in.ProductID,
		Location:   in.Location,
		Kind:       entity.MovementEntry,
		Quantity:   &qty,
		Reason:     ReasonPurchase,
		PurchaseID: in.PurchaseID,
		UserID:     in.UserID,
	}
	if err := normalizeRecordInput(&rec); err != nil {
		return nil, err
	}

	var out *PurchaseLineResult
	run := func() error {
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			b, err := uc.batches.ReceiveInTx(ctx, repos, batch.ReceiveInput{
				ProductID:     in.ProductID,
				Location:      rec.Location,
				BatchCode:     in.BatchCode,
				Quantity:      qty,
				ExpiryDate:    in.ExpiryDate,
				PurchasePrice: in.UnitCost,
				PurchaseID:    in.PurchaseID,
			})
			if err != nil {
				return err
			}
			r, err := uc.recorder.recordInTx(ctx, repos, rec)
			if err != nil {
				return err
			}
			out = &PurchaseLineResult{Movement: r.movement, Batch: b}
			return nil
		})
	}
	err := run()
	if errors.Is(err, domain.ErrDuplicate) {
		err = run()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DepleteSaleLine registra la EXIT "VENTA" y consume lotes por vencimiento. El stock puede
// quedar negativo y los lotes pueden no alcanzar: ninguno de los dos casos es error.
func (uc *IntakeUseCase) DepleteSaleLine(ctx context.Context, in SaleLineInput) (*SaleLineResult, error) {
	qty := in.Quantity
	rec := RecordInput{
		ProductID: in.ProductID,
		Location:  in.Location,
		Kind:      entity.MovementExit,
		Quantity:  &qty,
		Reason:    ReasonSale,
		SaleID:    in.SaleID,
		UserID:    in.UserID,
	}
	if err := normalizeRecordInput(&rec); err != nil {
		return nil, err
	}

	var (
		out *SaleLineResult
		r   *recorded
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		r, err = uc.recorder.recordInTx(ctx, repos, rec)
		if err != nil {
			return err
		}
		consumed, remaining, err := uc.batches.ConsumeFIFOInTx(ctx, repos, in.ProductID, rec.Location, qty)
		if err != nil {
			return err
		}
		out = &SaleLineResult{
			Movement:           r.movement,
			Consumed:           consumed,
			UncoveredQuantity:  remaining,
			UncoveredUnitPrice: r.product.SalePrice,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.recorder.alerts.Check(ctx, r)
	return out, nil
}
