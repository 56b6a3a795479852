package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func qty(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// fakeNotifier registra las notificaciones; puede fallar o entrar en pánico.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []entity.Notification
	fail    bool
	doPanic bool
}

func (n *fakeNotifier) Notify(_ context.Context, notif entity.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.doPanic {
		panic("canal roto")
	}
	if n.fail {
		return errors.New("smtp: connection refused")
	}
	n.sent = append(n.sent, notif)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type testEnv struct {
	store    *memory.Store
	notifier *fakeNotifier
	record   *inventory.RegisterMovementUseCase
	query    *inventory.StockQueryUseCase
	transfer *inventory.TransferUseCase
	reindex  *inventory.ReindexUseCase
	lowStock *inventory.LowStockUseCase
	intake   *inventory.IntakeUseCase
	batches  *batch.Manager
}

func newEnv(t *testing.T, lowStockCooldown time.Duration) *testEnv {
	t.Helper()
	store := memory.NewStore()
	store.SeedProduct(&entity.Product{
		ID: "p1", SKU: "LECHE-1L", Name: "Leche", CostPrice: d("10"), SalePrice: d("20"),
		MinimumStock: d("5"), Active: true,
	})
	tx := memory.NewTxRunner(store)
	clock := func() time.Time { return testNow }
	notifier := &fakeNotifier{}
	alerts := inventory.NewLowStockAlerter(notifier, memory.NewCooldown(clock), lowStockCooldown, logger.Nop())
	record := inventory.NewRegisterMovementUseCase(tx, alerts, clock)
	batches := batch.NewManager(tx, store.Repos(), logger.Nop(), batch.WithClock(clock))
	return &testEnv{
		store:    store,
		notifier: notifier,
		record:   record,
		query:    inventory.NewStockQueryUseCase(store.Repos()),
		transfer: inventory.NewTransferUseCase(tx, record),
		reindex:  inventory.NewReindexUseCase(tx, logger.Nop(), clock),
		lowStock: inventory.NewLowStockUseCase(store.Repos()),
		intake:   inventory.NewIntakeUseCase(tx, record, batches),
		batches:  batches,
	}
}

func (e *testEnv) move(t *testing.T, kind entity.MovementKind, location, q string) *entity.StockMovement {
	t.Helper()
	m, err := e.record.Record(context.Background(), inventory.RecordInput{
		ProductID: "p1", Location: location, Kind: kind, Quantity: qty(q),
	})
	require.NoError(t, err)
	return m
}

func (e *testEnv) stock(t *testing.T, location string) string {
	t.Helper()
	v, err := e.query.CurrentStock(context.Background(), "p1", location)
	require.NoError(t, err)
	return v.String()
}

func (e *testEnv) cached(t *testing.T, location string) string {
	t.Helper()
	row, err := e.store.Repos().Stock.Get(context.Background(), "p1", location)
	require.NoError(t, err)
	return row.Quantity.String()
}
