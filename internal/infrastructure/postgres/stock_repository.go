package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock cacheado de un producto en una ubicación.
func (r *StockRepo) Get(ctx context.Context, productID, location string) (*entity.Stock, error) {
	query := `
		SELECT product_id, location, quantity, updated_at
		FROM stock WHERE product_id = $1 AND location = $2`
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID, location).Scan(
		&s.ProductID, &s.Location, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProductID: productID, Location: location, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// LockForUpdate garantiza la fila y la bloquea (SELECT FOR UPDATE). Con la fila presente,
// dos escrituras concurrentes sobre la misma clave quedan en serie aunque sea el primer movimiento.
func (r *StockRepo) LockForUpdate(ctx context.Context, productID, location string) (*entity.Stock, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, location, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, location) DO NOTHING`, productID, location)
	if err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	var s entity.Stock
	err = r.q.QueryRow(ctx, `
		SELECT product_id, location, quantity, updated_at
		FROM stock WHERE product_id = $1 AND location = $2
		FOR UPDATE`, productID, location).Scan(&s.ProductID, &s.Location, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad en stock (por producto y ubicación).
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, location, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, location)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, stock.ProductID, stock.Location, stock.Quantity)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// TotalByProduct suma el cache en todas las ubicaciones.
func (r *StockRepo) TotalByProduct(ctx context.Context, productID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total stock: %w", err)
	}
	return total, nil
}

// List filas del cache ordenadas por producto y ubicación.
func (r *StockRepo) List(ctx context.Context, productID string) ([]*entity.Stock, error) {
	query := `SELECT product_id, location, quantity, updated_at FROM stock`
	var args []any
	if productID != "" {
		query += ` WHERE product_id = $1`
		args = append(args, productID)
	}
	query += ` ORDER BY product_id, location`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ProductID, &s.Location, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
