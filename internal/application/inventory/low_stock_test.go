package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

func seedLowStock(t *testing.T, e *testEnv) {
	t.Helper()
	e.store.SeedProduct(&entity.Product{ID: "p2", SKU: "ARROZ", Name: "Arroz", CostPrice: d("3"), MinimumStock: d("10"), Active: true})
	e.store.SeedProduct(&entity.Product{ID: "p3", SKU: "SAL", Name: "Sal", CostPrice: d("1"), Active: true})
	e.store.SeedProduct(&entity.Product{ID: "p4", SKU: "AZUCAR", Name: "Azúcar", CostPrice: d("2"), MinimumStock: d("5"), Active: true})

	ctx := context.Background()
	for _, in := range []inventory.RecordInput{
		{ProductID: "p1", Location: "a", Kind: entity.MovementEntry, Quantity: qty("2")},
		{ProductID: "p4", Location: "a", Kind: entity.MovementEntry, Quantity: qty("8")},
		{ProductID: "p4", Location: "b", Kind: entity.MovementEntry, Quantity: qty("1")},
	} {
		_, err := e.record.Record(ctx, in)
		require.NoError(t, err)
	}
}

func TestLowStock_OrdenPorDeficit(t *testing.T) {
	e := newEnv(t, 0)
	seedLowStock(t, e)

	got, err := e.lowStock.LowStock(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// p2: mínimo 10, stock 0 -> déficit 10
	assert.Equal(t, "p2", got[0].ProductID)
	assert.Equal(t, 1, got[0].Priority)
	assert.Equal(t, "15", got[0].IdealStock.String())
	assert.Equal(t, "15", got[0].SuggestedOrderQty.String())
	assert.Equal(t, "45.00", got[0].EstimatedOrderCost.StringFixed(2))

	// p1: mínimo 5, stock 2 -> déficit 3
	assert.Equal(t, "p1", got[1].ProductID)
	assert.Equal(t, 2, got[1].Priority)
	assert.Equal(t, "2", got[1].CurrentStock.String())
	assert.Equal(t, "5.5", got[1].SuggestedOrderQty.String())
	assert.Equal(t, "55.00", got[1].EstimatedOrderCost.StringFixed(2))
}

func TestLowStock_FiltroPorUbicacion(t *testing.T) {
	e := newEnv(t, 0)
	seedLowStock(t, e)

	got, err := e.lowStock.LowStock(context.Background(), "b")
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ProductID)
		assert.Equal(t, "b", s.Location)
	}
	// en "b" p4 solo tiene 1 unidad
	assert.Equal(t, []string{"p2", "p1", "p4"}, ids)
}

func TestLowStock_SinProductos(t *testing.T) {
	e := newEnv(t, 0)
	e.move(t, entity.MovementEntry, "", "50")

	got, err := e.lowStock.LowStock(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
