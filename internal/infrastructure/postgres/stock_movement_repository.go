package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger sobre PostgreSQL. seq es BIGSERIAL: orden de inserción.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, seq, product_id, location, kind, quantity, reason, purchase_id, sale_id, user_id, created_at`

// Create persiste un movimiento y devuelve el seq asignado por la base.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO stock_movements (id, product_id, location, kind, quantity, reason, purchase_id, sale_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ProductID, m.Location, string(m.Kind), m.Quantity, m.Reason,
		nullString(m.PurchaseID), nullString(m.SaleID), nullString(m.UserID), m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByKey movimientos de un producto+ubicación en orden de seq.
func (r *StockMovementRepo) ListByKey(ctx context.Context, productID, location string) ([]*entity.StockMovement, error) {
	return r.ListForFold(ctx, repository.MovementFilter{ProductID: productID, Location: location})
}

// ListForFold movimientos filtrados en orden de seq.
func (r *StockMovementRepo) ListForFold(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	where, args := movementWhere(f)
	return r.query(ctx, `SELECT `+movementColumns+` FROM stock_movements`+where+` ORDER BY seq ASC`, args...)
}

// List auditoría paginada, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, error) {
	where, args := movementWhere(f)
	pos := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM stock_movements%s ORDER BY seq DESC LIMIT $%d OFFSET $%d`,
		movementColumns, where, pos, pos+1)
	args = append(args, limit, offset)
	return r.query(ctx, query, args...)
}

func movementWhere(f repository.MovementFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Location != "" {
		add("location = $%d", f.Location)
	}
	if f.Kind != "" {
		add("kind = $%d", string(f.Kind))
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *StockMovementRepo) query(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var kind string
	var purchaseID, saleID, userID *string
	err := row.Scan(&m.ID, &m.Seq, &m.ProductID, &m.Location, &kind, &m.Quantity, &m.Reason,
		&purchaseID, &saleID, &userID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	m.PurchaseID = fromNull(purchaseID)
	m.SaleID = fromNull(saleID)
	m.UserID = fromNull(userID)
	return &m, nil
}
