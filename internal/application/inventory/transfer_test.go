package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

func TestTransfer_MueveStockEntreUbicaciones(t *testing.T) {
	e := newEnv(t, 0)
	e.move(t, entity.MovementEntry, "a", "10")

	res, err := e.transfer.Transfer(context.Background(), inventory.TransferInput{
		ProductID: "p1", From: "a", To: "b", Quantity: d("4"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementExit, res.Exit.Kind)
	assert.Equal(t, entity.MovementEntry, res.Entry.Kind)
	assert.Equal(t, inventory.ReasonTransfer, res.Exit.Reason)
	assert.Equal(t, inventory.ReasonTransfer, res.Entry.Reason)
	assert.Less(t, res.Exit.Seq, res.Entry.Seq)

	assert.Equal(t, "6", e.stock(t, "a"))
	assert.Equal(t, "4", e.stock(t, "b"))
	assert.Equal(t, "6", e.cached(t, "a"))
	assert.Equal(t, "4", e.cached(t, "b"))
	assert.Zero(t, e.notifier.count(), "el total del producto no cambia")
}

func TestTransfer_StockInsuficienteNoEscribeNada(t *testing.T) {
	e := newEnv(t, 0)
	e.move(t, entity.MovementEntry, "a", "10")
	ctx := context.Background()

	_, err := e.transfer.Transfer(ctx, inventory.TransferInput{
		ProductID: "p1", From: "a", To: "b", Quantity: d("100"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	movs, err := e.store.Repos().Movements.List(ctx, repository.MovementFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "solo la entrada inicial")
	assert.Equal(t, "10", e.stock(t, "a"))
	assert.Equal(t, "0", e.stock(t, "b"))

	rows, err := e.store.Repos().Stock.List(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].Location, "la fila bloqueada en destino se descarta con el rollback")
	assert.Equal(t, "10", rows[0].Quantity.String())
}

func TestTransfer_Validaciones(t *testing.T) {
	e := newEnv(t, 0)
	e.move(t, entity.MovementEntry, "", "10")
	ctx := context.Background()

	cases := []struct {
		name string
		in   inventory.TransferInput
		want error
	}{
		{"misma ubicación", inventory.TransferInput{ProductID: "p1", From: "a", To: " a ", Quantity: d("1")}, domain.ErrInvalidInput},
		{"ambas por defecto", inventory.TransferInput{ProductID: "p1", Quantity: d("1")}, domain.ErrInvalidInput},
		{"cantidad cero", inventory.TransferInput{ProductID: "p1", From: "a", To: "b", Quantity: d("0")}, domain.ErrInvalidInput},
		{"sin producto", inventory.TransferInput{From: "a", To: "b", Quantity: d("1")}, domain.ErrInvalidInput},
		{"producto inexistente", inventory.TransferInput{ProductID: "x", From: "a", To: "b", Quantity: d("1")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.transfer.Transfer(ctx, tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), err.Error())
		})
	}
}

func TestTransfer_TodoElDisponible(t *testing.T) {
	e := newEnv(t, 0)
	e.move(t, entity.MovementEntry, "a", "3")
	_, err := e.transfer.Transfer(context.Background(), inventory.TransferInput{
		ProductID: "p1", From: "a", To: "b", Quantity: d("3"), Reason: "REUBICACIÓN",
	})
	require.NoError(t, err)
	assert.Equal(t, "0", e.stock(t, "a"))
	assert.Equal(t, "3", e.stock(t, "b"))
}
