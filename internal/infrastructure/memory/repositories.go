package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
	_ repository.BatchRepository         = (*BatchRepo)(nil)
	_ repository.NotificationRepository  = (*NotificationRepo)(nil)
)

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	s    *Store
	inTx bool
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	_ = r.s.view(r.inTx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, nil
}

func (r *ProductRepo) ListWithMinimumStock(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	_ = r.s.view(r.inTx, func(st *state) error {
		for _, p := range st.products {
			if p.Active && p.MinimumStock.GreaterThan(decimal.Zero) {
				cp := *p
				out = append(out, &cp)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Product) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Cache de stock
// ──────────────────────────────────────────────────────────────────────────────

// StockRepo cache de stock en memoria. LockForUpdate no bloquea nada adicional:
// el lock del Store ya serializa las transacciones.
type StockRepo struct {
	s    *Store
	inTx bool
}

func (r *StockRepo) Get(_ context.Context, productID, location string) (*entity.Stock, error) {
	var out *entity.Stock
	_ = r.s.view(r.inTx, func(st *state) error {
		if row, ok := st.stock[stockKey{productID, location}]; ok {
			cp := *row
			out = &cp
			return nil
		}
		out = &entity.Stock{ProductID: productID, Location: location, Quantity: decimal.Zero}
		return nil
	})
	return out, nil
}

func (r *StockRepo) LockForUpdate(ctx context.Context, productID, location string) (*entity.Stock, error) {
	var out *entity.Stock
	_ = r.s.view(r.inTx, func(st *state) error {
		k := stockKey{productID, location}
		row, ok := st.stock[k]
		if !ok {
			row = &entity.Stock{ProductID: productID, Location: location, Quantity: decimal.Zero, UpdatedAt: time.Now()}
			st.stock[k] = row
		}
		cp := *row
		out = &cp
		return nil
	})
	return out, nil
}

func (r *StockRepo) Upsert(_ context.Context, stock *entity.Stock) error {
	return r.s.view(r.inTx, func(st *state) error {
		cp := *stock
		st.stock[stockKey{stock.ProductID, stock.Location}] = &cp
		return nil
	})
}

func (r *StockRepo) TotalByProduct(_ context.Context, productID string) (decimal.Decimal, error) {
	total := decimal.Zero
	_ = r.s.view(r.inTx, func(st *state) error {
		for k, row := range st.stock {
			if k.productID == productID {
				total = total.Add(row.Quantity)
			}
		}
		return nil
	})
	return total, nil
}

func (r *StockRepo) List(_ context.Context, productID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	_ = r.s.view(r.inTx, func(st *state) error {
		for k, row := range st.stock {
			if productID == "" || k.productID == productID {
				cp := *row
				out = append(out, &cp)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Stock) int {
		if c := strings.Compare(a.ProductID, b.ProductID); c != 0 {
			return c
		}
		return strings.Compare(a.Location, b.Location)
	})
	return out, nil
}

// SetCachedQuantity escribe el cache sin pasar por el ledger (reparaciones y pruebas de drift).
func (s *Store) SetCachedQuantity(productID, location string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.stock[stockKey{productID, location}] = &entity.Stock{
		ProductID: productID, Location: location, Quantity: qty, UpdatedAt: time.Now(),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

// MovementRepo ledger en memoria (solo inserción).
type MovementRepo struct {
	s    *Store
	inTx bool
}

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.s.view(r.inTx, func(st *state) error {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		st.seq++
		m.Seq = st.seq
		cp := *m
		st.movements = append(st.movements, &cp)
		return nil
	})
}

func (r *MovementRepo) ListByKey(ctx context.Context, productID, location string) ([]*entity.StockMovement, error) {
	return r.ListForFold(ctx, repository.MovementFilter{ProductID: productID, Location: location})
}

func (r *MovementRepo) ListForFold(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	_ = r.s.view(r.inTx, func(st *state) error {
		out = filterMovements(st.movements, f)
		return nil
	})
	return out, nil
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, error) {
	var all []*entity.StockMovement
	_ = r.s.view(r.inTx, func(st *state) error {
		all = filterMovements(st.movements, f)
		return nil
	})
	slices.Reverse(all)
	if offset >= len(all) {
		return []*entity.StockMovement{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

// filterMovements copia en orden de Seq (el slice ya está en orden de inserción).
func filterMovements(movs []*entity.StockMovement, f repository.MovementFilter) []*entity.StockMovement {
	out := make([]*entity.StockMovement, 0)
	for _, m := range movs {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Location != "" && m.Location != f.Location {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

// BatchRepo lotes en memoria. Emula los índices únicos de Postgres:
// (producto, ubicación, código) y, sin código, (producto, ubicación, vencimiento).
type BatchRepo struct {
	s    *Store
	inTx bool
}

func cloneBatch(b *entity.Batch) *entity.Batch {
	cp := *b
	return &cp
}

func conflicts(a, b *entity.Batch) bool {
	if a.ID == b.ID || a.ProductID != b.ProductID || a.Location != b.Location {
		return false
	}
	if a.BatchCode != "" || b.BatchCode != "" {
		return a.BatchCode != "" && a.BatchCode == b.BatchCode
	}
	return inventory.DateOnly(a.ExpiryDate).Equal(inventory.DateOnly(b.ExpiryDate))
}

func (r *BatchRepo) Create(_ context.Context, b *entity.Batch) error {
	return r.s.view(r.inTx, func(st *state) error {
		if b.ID == "" {
			b.ID = uuid.New().String()
		}
		if _, ok := st.batches[b.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.batches {
			if conflicts(b, other) {
				return domain.ErrDuplicate
			}
		}
		st.batches[b.ID] = cloneBatch(b)
		return nil
	})
}

func (r *BatchRepo) Update(_ context.Context, b *entity.Batch) error {
	return r.s.view(r.inTx, func(st *state) error {
		if _, ok := st.batches[b.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.batches {
			if conflicts(b, other) {
				return domain.ErrDuplicate
			}
		}
		st.batches[b.ID] = cloneBatch(b)
		return nil
	})
}

func (r *BatchRepo) Delete(_ context.Context, id string) error {
	return r.s.view(r.inTx, func(st *state) error {
		delete(st.batches, id)
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	var out *entity.Batch
	_ = r.s.view(r.inTx, func(st *state) error {
		if b, ok := st.batches[id]; ok {
			out = cloneBatch(b)
		}
		return nil
	})
	return out, nil
}

func (r *BatchRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r *BatchRepo) first(match func(b *entity.Batch) bool) *entity.Batch {
	var found []*entity.Batch
	_ = r.s.view(r.inTx, func(st *state) error {
		for _, b := range st.batches {
			if match(b) {
				found = append(found, cloneBatch(b))
			}
		}
		return nil
	})
	if len(found) == 0 {
		return nil
	}
	inventory.SortFEFO(found)
	return found[0]
}

func (r *BatchRepo) FindByCodeForUpdate(_ context.Context, productID, location, code string) (*entity.Batch, error) {
	return r.first(func(b *entity.Batch) bool {
		return b.ProductID == productID && b.Location == location && b.BatchCode == code
	}), nil
}

func (r *BatchRepo) FindByExpiryForUpdate(_ context.Context, productID, location string, expiry time.Time) (*entity.Batch, error) {
	day := inventory.DateOnly(expiry)
	return r.first(func(b *entity.Batch) bool {
		return b.ProductID == productID && b.Location == location && inventory.DateOnly(b.ExpiryDate).Equal(day)
	}), nil
}

func (r *BatchRepo) list(match func(b *entity.Batch) bool) []*entity.Batch {
	out := make([]*entity.Batch, 0)
	_ = r.s.view(r.inTx, func(st *state) error {
		for _, b := range st.batches {
			if match(b) {
				out = append(out, cloneBatch(b))
			}
		}
		return nil
	})
	inventory.SortFEFO(out)
	return out
}

func (r *BatchRepo) ListAvailableForUpdate(ctx context.Context, productID, location string) ([]*entity.Batch, error) {
	return r.ListByProduct(ctx, productID, location)
}

func (r *BatchRepo) FirstAvailable(_ context.Context, productID, location string) (*entity.Batch, error) {
	return r.first(func(b *entity.Batch) bool {
		return b.ProductID == productID && b.Location == location && b.HasStock()
	}), nil
}

func (r *BatchRepo) ListByProduct(_ context.Context, productID, location string) ([]*entity.Batch, error) {
	return r.list(func(b *entity.Batch) bool {
		return b.ProductID == productID && (location == "" || b.Location == location) && b.HasStock()
	}), nil
}

func (r *BatchRepo) ListExpiring(_ context.Context, until time.Time) ([]*entity.Batch, error) {
	return r.list(func(b *entity.Batch) bool {
		return b.HasStock() && !b.ExpiryDate.After(until)
	}), nil
}

func (r *BatchRepo) CountExpiring(ctx context.Context, until time.Time) (int, error) {
	list, err := r.ListExpiring(ctx, until)
	return len(list), err
}

func (r *BatchRepo) ListAvailableIDs(_ context.Context) ([]string, error) {
	return batchIDs(r.list(func(b *entity.Batch) bool { return b.HasStock() })), nil
}

func (r *BatchRepo) ListMissingOriginalPriceIDs(_ context.Context) ([]string, error) {
	return batchIDs(r.list(func(b *entity.Batch) bool { return b.OriginalSalePrice.IsZero() })), nil
}

func batchIDs(list []*entity.Batch) []string {
	ids := make([]string, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.ID)
	}
	return ids
}

// ──────────────────────────────────────────────────────────────────────────────
// Notificaciones
// ──────────────────────────────────────────────────────────────────────────────

// NotificationRepo bandeja en memoria.
type NotificationRepo struct {
	s *Store
}

func (r *NotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	return r.s.view(false, func(st *state) error {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		cp := *n
		st.notifications = append(st.notifications, &cp)
		return nil
	})
}

func (r *NotificationRepo) ListRecent(_ context.Context, limit int) ([]*entity.Notification, error) {
	out := make([]*entity.Notification, 0)
	_ = r.s.view(false, func(st *state) error {
		for i := len(st.notifications) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
			cp := *st.notifications[i]
			out = append(out, &cp)
		}
		return nil
	})
	return out, nil
}
