package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

func mov(seq int64, product, loc string, kind entity.MovementKind, qty string) *entity.StockMovement {
	return &entity.StockMovement{Seq: seq, ProductID: product, Location: loc, Kind: kind, Quantity: d(qty)}
}

func TestFold_EntradaSalidaAjuste(t *testing.T) {
	movs := []*entity.StockMovement{
		mov(1, "p", "default", entity.MovementEntry, "10"),
		mov(2, "p", "default", entity.MovementExit, "3"),
		mov(3, "p", "default", entity.MovementAdjustment, "20"),
		mov(4, "p", "default", entity.MovementExit, "5"),
	}
	assert.Equal(t, "15", inventory.Fold(movs).String())
}

func TestFold_OrdenaPorSeq(t *testing.T) {
	// ADJUSTMENT seq=2 debe aplicarse antes que ENTRY seq=3 aunque llegue al final.
	movs := []*entity.StockMovement{
		mov(3, "p", "default", entity.MovementEntry, "4"),
		mov(1, "p", "default", entity.MovementEntry, "100"),
		mov(2, "p", "default", entity.MovementAdjustment, "7"),
	}
	assert.Equal(t, "11", inventory.Fold(movs).String())
	assert.Equal(t, int64(3), movs[0].Seq, "el slice original no se reordena")
}

func TestFold_VacioEsCero(t *testing.T) {
	assert.True(t, inventory.Fold(nil).Equal(decimal.Zero))
}

func TestFold_PermiteNegativo(t *testing.T) {
	movs := []*entity.StockMovement{mov(1, "p", "default", entity.MovementExit, "2")}
	assert.Equal(t, "-2", inventory.Fold(movs).String())
}

func TestFoldByKey_AgrupaYOrdena(t *testing.T) {
	movs := []*entity.StockMovement{
		mov(1, "b", "sur", entity.MovementEntry, "5"),
		mov(2, "a", "norte", entity.MovementEntry, "2"),
		mov(3, "a", "centro", entity.MovementEntry, "9"),
		mov(4, "a", "norte", entity.MovementExit, "1"),
	}
	levels := inventory.FoldByKey(movs)
	require.Len(t, levels, 3)
	assert.Equal(t, "a", levels[0].ProductID)
	assert.Equal(t, "centro", levels[0].Location)
	assert.Equal(t, "9", levels[0].Quantity.String())
	assert.Equal(t, "a", levels[1].ProductID)
	assert.Equal(t, "norte", levels[1].Location)
	assert.Equal(t, "1", levels[1].Quantity.String())
	assert.Equal(t, "b", levels[2].ProductID)
	assert.Equal(t, "5", levels[2].Quantity.String())
}
