package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

func TestCurrentStock_ProductoSinMovimientos(t *testing.T) {
	e := newEnv(t, 0)
	assert.Equal(t, "0", e.stock(t, "cualquiera"))

	_, err := e.query.CurrentStock(context.Background(), "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSummary_OrdenadoPorProductoYUbicacion(t *testing.T) {
	e := newEnv(t, 0)
	e.move(t, entity.MovementEntry, "b", "1")
	e.move(t, entity.MovementEntry, "a", "2")
	e.move(t, entity.MovementExit, "a", "1")

	levels, err := e.query.Summary(context.Background(), inventory.SummaryFilter{})
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "a", levels[0].Location)
	assert.Equal(t, "1", levels[0].Quantity.String())
	assert.Equal(t, "b", levels[1].Location)

	only, err := e.query.Summary(context.Background(), inventory.SummaryFilter{ProductID: "p1", Location: " b "})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "b", only[0].Location)
}

func TestListMovements_MasRecientesPrimero(t *testing.T) {
	e := newEnv(t, 0)
	e.move(t, entity.MovementEntry, "", "1")
	e.move(t, entity.MovementExit, "", "1")
	e.move(t, entity.MovementEntry, "otra", "5")
	ctx := context.Background()

	all, err := e.query.ListMovements(ctx, repository.MovementFilter{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Greater(t, all[0].Seq, all[1].Seq)
	assert.Greater(t, all[1].Seq, all[2].Seq)

	exits, err := e.query.ListMovements(ctx, repository.MovementFilter{Kind: entity.MovementExit}, 10, 0)
	require.NoError(t, err)
	require.Len(t, exits, 1)

	page, err := e.query.ListMovements(ctx, repository.MovementFilter{}, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)
}

func TestListMovements_FiltrosInvalidos(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()

	_, err := e.query.ListMovements(ctx, repository.MovementFilter{Kind: "ROBO"}, 10, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	from := testNow
	to := testNow.Add(-time.Hour)
	_, err = e.query.ListMovements(ctx, repository.MovementFilter{From: &from, To: &to}, 10, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCachedStock_LeeLaProyeccion(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	e.move(t, entity.MovementEntry, "a", "4")

	cached, err := e.query.CachedStock(ctx, "p1", " a ")
	require.NoError(t, err)
	assert.Equal(t, "4", cached.String())

	e.store.SetCachedQuantity("p1", "a", d("9"))
	cached, err = e.query.CachedStock(ctx, "p1", "a")
	require.NoError(t, err)
	assert.Equal(t, "9", cached.String())
	assert.Equal(t, "4", e.stock(t, "a"), "el ledger no cambia")

	missing, err := e.query.CachedStock(ctx, "p1", "sin-fila")
	require.NoError(t, err)
	assert.True(t, missing.IsZero())

	_, err = e.query.CachedStock(ctx, "", "a")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
