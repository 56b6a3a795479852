package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// TransferInput traslado entre ubicaciones del mismo producto.
type TransferInput struct {
	ProductID string
	From      string
	To        string
	Quantity  decimal.Decimal
	Reason    string
	UserID    string
}

// TransferResult par de movimientos escritos.
type TransferResult struct {
	Exit  *entity.StockMovement
	Entry *entity.StockMovement
}

// TransferUseCase EXIT en origen + ENTRY en destino en una sola transacción.
type TransferUseCase struct {
	txRunner TxRunner
	recorder *RegisterMovementUseCase
}

// NewTransferUseCase construye el coordinador de traslados.
func NewTransferUseCase(txRunner TxRunner, recorder *RegisterMovementUseCase) *TransferUseCase {
	return &TransferUseCase{txRunner: txRunner, recorder: recorder}
}

// Transfer valida todo antes de escribir; con stock insuficiente en origen no escribe nada.
func (uc *TransferUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("producto requerido: %w", domain.ErrInvalidInput)
	}
	from := entity.NormalizeLocation(in.From)
	to := entity.NormalizeLocation(in.To)
	if from == to {
		return nil, fmt.Errorf("origen y destino iguales (%s): %w", from, domain.ErrInvalidInput)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("cantidad %s debe ser > 0: %w", in.Quantity, domain.ErrInvalidInput)
	}
	reason := in.Reason
	if reason == "" {
		reason = ReasonTransfer
	}
	qty := in.Quantity

	var exitRec, entryRec *recorded
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
		}

		// Orden fijo de bloqueo para que traslados cruzados no se bloqueen mutuamente
		locs := []string{from, to}
		sort.Strings(locs)
		for _, l := range locs {
			if _, err := repos.Stock.LockForUpdate(ctx, in.ProductID, l); err != nil {
				return err
			}
		}

		movs, err := repos.Movements.ListByKey(ctx, in.ProductID, from)
		if err != nil {
			return err
		}
		available := inventory.Fold(movs)
		if available.LessThan(qty) {
			return fmt.Errorf("disponible %s en %s, solicitado %s: %w", available, from, qty, domain.ErrInsufficientStock)
		}

		exitRec, err = uc.recorder.recordInTx(ctx, repos, RecordInput{
			ProductID: in.ProductID, Location: from, Kind: entity.MovementExit,
			Quantity: &qty, Reason: reason, UserID: in.UserID,
		})
		if err != nil {
			return err
		}
		entryRec, err = uc.recorder.recordInTx(ctx, repos, RecordInput{
			ProductID: in.ProductID, Location: to, Kind: entity.MovementEntry,
			Quantity: &qty, Reason: reason, UserID: in.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	// el total ya incluye la entrada en destino
	uc.recorder.alerts.Check(ctx, &recorded{movement: exitRec.movement, product: exitRec.product, total: entryRec.total})
	return &TransferResult{Exit: exitRec.movement, Entry: entryRec.movement}, nil
}
