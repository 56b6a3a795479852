package pricing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/application/pricing"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newResolver(t *testing.T) (*pricing.Resolver, *batch.Manager) {
	t.Helper()
	store := memory.NewStore()
	store.SeedProduct(&entity.Product{
		ID: "p1", Name: "Yogur", CostPrice: d("10"), SalePrice: d("20"), MinimumStock: d("1"), Active: true,
	})
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	m := batch.NewManager(memory.NewTxRunner(store), store.Repos(), logger.Nop(),
		batch.WithClock(func() time.Time { return now }))
	return pricing.NewResolver(m), m
}

func TestResolvePrice_SinLotesUsaCatalogo(t *testing.T) {
	r, _ := newResolver(t)
	price, err := r.ResolvePrice(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.Equal(t, "20", price.String())
}

func TestResolvePrice_LoteProximoAVencer(t *testing.T) {
	r, m := newResolver(t)
	ctx := context.Background()
	expiry := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	_, err := m.Receive(ctx, batch.ReceiveInput{
		ProductID: "p1", Quantity: d("3"), ExpiryDate: &expiry, PurchasePrice: d("10"),
	})
	require.NoError(t, err)

	price, err := r.ResolvePrice(ctx, "p1", "")
	require.NoError(t, err)
	// 4 días -> 30% sobre el margen: 10 + 10*0.7
	assert.Equal(t, "17.00", price.StringFixed(2))

	q, err := r.Quote(ctx, "p1", "default")
	require.NoError(t, err)
	assert.True(t, q.HasBatch)
	assert.Equal(t, "20", q.OriginalPrice.String())
	assert.Equal(t, "30", q.DiscountPercent.String())
	require.NotNil(t, q.ExpiryDate)
	assert.True(t, q.ExpiryDate.Equal(expiry))
}

func TestResolvePrice_OtraUbicacionSinLotes(t *testing.T) {
	r, m := newResolver(t)
	ctx := context.Background()
	expiry := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	_, err := m.Receive(ctx, batch.ReceiveInput{
		ProductID: "p1", Location: "a", Quantity: d("3"), ExpiryDate: &expiry, PurchasePrice: d("10"),
	})
	require.NoError(t, err)

	price, err := r.ResolvePrice(ctx, "p1", "b")
	require.NoError(t, err)
	assert.Equal(t, "20", price.String())
}

func TestResolvePrice_Errores(t *testing.T) {
	r, _ := newResolver(t)
	_, err := r.ResolvePrice(context.Background(), "nope", "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = r.ResolvePrice(context.Background(), "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

type stubPricer struct{ err error }

func (s stubPricer) BestPrice(_ context.Context, productID, location string) (*batch.PriceInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &batch.PriceInfo{ProductID: productID, Location: location, Price: decimal.NewFromInt(7)}, nil
}

func TestResolvePrice_PropagaErrorDeLaFuente(t *testing.T) {
	boom := errors.New("db caída")
	_, err := pricing.NewResolver(stubPricer{err: boom}).ResolvePrice(context.Background(), "p1", "")
	assert.ErrorIs(t, err, boom)

	price, err := pricing.NewResolver(stubPricer{}).ResolvePrice(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.Equal(t, "7", price.String())
}
