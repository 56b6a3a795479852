package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes sobre PostgreSQL. Orden FEFO: expiry_date, created_at, id.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const (
	batchColumns = `id, product_id, location, batch_code, quantity, expiry_date, purchase_price,
		original_sale_price, current_price, discount_percent, manual_discount, purchase_id, created_at, updated_at`
	fefoOrder = ` ORDER BY expiry_date ASC, created_at ASC, id ASC`
)

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	var code, purchaseID *string
	err := row.Scan(&b.ID, &b.ProductID, &b.Location, &code, &b.Quantity, &b.ExpiryDate, &b.PurchasePrice,
		&b.OriginalSalePrice, &b.CurrentPrice, &b.DiscountPercent, &b.ManualDiscount, &purchaseID,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.BatchCode = fromNull(code)
	b.PurchaseID = fromNull(purchaseID)
	b.ExpiryDate = b.ExpiryDate.UTC()
	return &b, nil
}

// Create inserta el lote. Choque con los índices únicos -> domain.ErrDuplicate.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ProductID, b.Location, nullString(b.BatchCode), b.Quantity, b.ExpiryDate, b.PurchasePrice,
		b.OriginalSalePrice, b.CurrentPrice, b.DiscountPercent, b.ManualDiscount, nullString(b.PurchaseID),
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// Update reescribe cantidades y precios del lote.
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	query := `
		UPDATE batches SET quantity = $2, purchase_price = $3, original_sale_price = $4, current_price = $5,
			discount_percent = $6, manual_discount = $7, purchase_id = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		b.ID, b.Quantity, b.PurchasePrice, b.OriginalSalePrice, b.CurrentPrice,
		b.DiscountPercent, b.ManualDiscount, nullString(b.PurchaseID), b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un lote agotado.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

func (r *BatchRepo) one(ctx context.Context, query string, args ...any) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

func (r *BatchRepo) many(ctx context.Context, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *BatchRepo) ids(ctx context.Context, query string) ([]string, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list batch ids: %w", err)
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan batch id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	return r.one(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
}

func (r *BatchRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.one(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1 FOR UPDATE`, id)
}

func (r *BatchRepo) FindByCodeForUpdate(ctx context.Context, productID, location, code string) (*entity.Batch, error) {
	return r.one(ctx, `SELECT `+batchColumns+` FROM batches
		WHERE product_id = $1 AND location = $2 AND batch_code = $3`+fefoOrder+` LIMIT 1 FOR UPDATE`,
		productID, location, code)
}

func (r *BatchRepo) FindByExpiryForUpdate(ctx context.Context, productID, location string, expiry time.Time) (*entity.Batch, error) {
	return r.one(ctx, `SELECT `+batchColumns+` FROM batches
		WHERE product_id = $1 AND location = $2 AND expiry_date = $3`+fefoOrder+` LIMIT 1 FOR UPDATE`,
		productID, location, expiry)
}

func (r *BatchRepo) ListAvailableForUpdate(ctx context.Context, productID, location string) ([]*entity.Batch, error) {
	return r.many(ctx, `SELECT `+batchColumns+` FROM batches
		WHERE product_id = $1 AND location = $2 AND quantity > 0`+fefoOrder+` FOR UPDATE`,
		productID, location)
}

func (r *BatchRepo) FirstAvailable(ctx context.Context, productID, location string) (*entity.Batch, error) {
	return r.one(ctx, `SELECT `+batchColumns+` FROM batches
		WHERE product_id = $1 AND location = $2 AND quantity > 0`+fefoOrder+` LIMIT 1`,
		productID, location)
}

func (r *BatchRepo) ListByProduct(ctx context.Context, productID, location string) ([]*entity.Batch, error) {
	if location == "" {
		return r.many(ctx, `SELECT `+batchColumns+` FROM batches
			WHERE product_id = $1 AND quantity > 0`+fefoOrder, productID)
	}
	return r.many(ctx, `SELECT `+batchColumns+` FROM batches
		WHERE product_id = $1 AND location = $2 AND quantity > 0`+fefoOrder, productID, location)
}

func (r *BatchRepo) ListExpiring(ctx context.Context, until time.Time) ([]*entity.Batch, error) {
	return r.many(ctx, `SELECT `+batchColumns+` FROM batches
		WHERE quantity > 0 AND expiry_date <= $1`+fefoOrder, until)
}

func (r *BatchRepo) CountExpiring(ctx context.Context, until time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM batches WHERE quantity > 0 AND expiry_date <= $1`, until).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count expiring batches: %w", err)
	}
	return n, nil
}

func (r *BatchRepo) ListAvailableIDs(ctx context.Context) ([]string, error) {
	return r.ids(ctx, `SELECT id FROM batches WHERE quantity > 0`+fefoOrder)
}

func (r *BatchRepo) ListMissingOriginalPriceIDs(ctx context.Context) ([]string, error) {
	return r.ids(ctx, `SELECT id FROM batches WHERE original_sale_price = 0`+fefoOrder)
}
