package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newStore() *memory.Store {
	s := memory.NewStore()
	s.SeedProduct(&entity.Product{ID: "p1", Name: "Queso", SalePrice: d("20"), Active: true})
	return s
}

func entry(q string) *entity.StockMovement {
	return &entity.StockMovement{
		ProductID: "p1", Location: "default", Kind: entity.MovementEntry, Quantity: d(q), CreatedAt: time.Now(),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestTxRunner_ErrorRevierte(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := memory.NewTxRunner(s).Run(ctx, func(repos repository.Repos) error {
		require.NoError(t, repos.Movements.Create(ctx, entry("5")))
		row, err := repos.Stock.LockForUpdate(ctx, "p1", "default")
		require.NoError(t, err)
		row.Quantity = d("5")
		require.NoError(t, repos.Stock.Upsert(ctx, row))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	movs, err := s.Repos().Movements.ListForFold(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
	rows, err := s.Repos().Stock.List(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, rows, "la fila creada por LockForUpdate se descarta con el rollback")
}

func TestTxRunner_PanicoRevierteYSePropaga(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = memory.NewTxRunner(s).Run(ctx, func(repos repository.Repos) error {
			_ = repos.Movements.Create(ctx, entry("1"))
			panic("fallo")
		})
	})

	movs, err := s.Repos().Movements.ListForFold(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)

	// el lock quedó libre
	require.NoError(t, s.Repos().Movements.Create(ctx, entry("1")))
}

func TestTxRunner_CommitAsignaSeq(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	var first, second *entity.StockMovement

	err := memory.NewTxRunner(s).Run(ctx, func(repos repository.Repos) error {
		first, second = entry("1"), entry("2")
		if err := repos.Movements.Create(ctx, first); err != nil {
			return err
		}
		return repos.Movements.Create(ctx, second)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
}

func TestTxRunner_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewTxRunner(newStore()).Run(ctx, func(repository.Repos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestBatchRepo_UnicidadPorCodigoYVencimiento(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	repo := s.Repos().Batches
	expiry := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &entity.Batch{ProductID: "p1", Location: "default", Quantity: d("1"), ExpiryDate: expiry}))
	err := repo.Create(ctx, &entity.Batch{ProductID: "p1", Location: "default", Quantity: d("1"), ExpiryDate: expiry})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	// con código no choca con el lote sin código del mismo vencimiento
	require.NoError(t, repo.Create(ctx, &entity.Batch{ProductID: "p1", Location: "default", BatchCode: "L1", Quantity: d("1"), ExpiryDate: expiry}))
	err = repo.Create(ctx, &entity.Batch{ProductID: "p1", Location: "default", BatchCode: "L1", Quantity: d("1"), ExpiryDate: expiry.AddDate(0, 1, 0)})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	// otra ubicación es otra partición
	require.NoError(t, repo.Create(ctx, &entity.Batch{ProductID: "p1", Location: "b", BatchCode: "L1", Quantity: d("1"), ExpiryDate: expiry}))
}

func TestBatchRepo_LecturasDevuelvenCopias(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	b := &entity.Batch{ProductID: "p1", Location: "default", Quantity: d("4"), ExpiryDate: time.Now()}
	require.NoError(t, s.Repos().Batches.Create(ctx, b))

	got, err := s.Repos().Batches.GetByID(ctx, b.ID)
	require.NoError(t, err)
	got.Quantity = d("100")

	again, err := s.Repos().Batches.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "4", again.Quantity.String())

	err = s.Repos().Batches.Update(ctx, &entity.Batch{ID: "nope", ProductID: "p1"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBatchRepo_FEFO(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	repo := s.Repos().Batches
	late := &entity.Batch{ProductID: "p1", Location: "default", BatchCode: "B", Quantity: d("1"), ExpiryDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	early := &entity.Batch{ProductID: "p1", Location: "default", BatchCode: "A", Quantity: d("1"), ExpiryDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	empty := &entity.Batch{ProductID: "p1", Location: "default", BatchCode: "C", Quantity: decimal.Zero, ExpiryDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	for _, b := range []*entity.Batch{late, early, empty} {
		require.NoError(t, repo.Create(ctx, b))
	}

	first, err := repo.FirstAvailable(ctx, "p1", "default")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, early.ID, first.ID)

	none, err := repo.FirstAvailable(ctx, "p1", "otra")
	require.NoError(t, err)
	assert.Nil(t, none)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo y cool-down
// ──────────────────────────────────────────────────────────────────────────────

func TestLoadProducts(t *testing.T) {
	s := memory.NewStore()
	n, err := s.LoadProducts(strings.NewReader(`[
		{"id":"p1","sku":"A","name":"Arroz","cost_price":"3","sale_price":"5.5","minimum_stock":"10"},
		{"id":"p2","name":"Viejo","active":false}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := s.Repos().Products.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Active)
	assert.Equal(t, "5.5", p.SalePrice.String())

	low, err := s.Repos().Products.ListWithMinimumStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "p1", low[0].ID)

	_, err = s.LoadProducts(strings.NewReader(`[{"name":"sin id"}]`))
	assert.Error(t, err)
	_, err = s.LoadProducts(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestCooldown_AcquireYReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := memory.NewCooldown(func() time.Time { return now })
	ctx := context.Background()

	ok, err := c.Acquire(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = c.Acquire(ctx, "k", time.Hour)
	assert.False(t, ok)

	now = now.Add(61 * time.Minute)
	ok, _ = c.Acquire(ctx, "k", time.Hour)
	assert.True(t, ok)

	require.NoError(t, c.Reset(ctx, "k"))
	ok, _ = c.Acquire(ctx, "k", time.Hour)
	assert.True(t, ok)
}

func TestNotificationRepo_MasRecientesPrimero(t *testing.T) {
	s := memory.NewStore()
	repo := s.NotificationRepository()
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &entity.Notification{Type: entity.NotificationLowStock, Title: title}))
	}
	got, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Title)
	assert.Equal(t, "b", got[1].Title)
	assert.NotEmpty(t, got[0].ID)
}
