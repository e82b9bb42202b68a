package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var (
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto terminado.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.FinishedStock, error) {
	if !validUUID(productID) {
		return &entity.FinishedStock{ProductID: productID}, nil
	}
	return r.get(ctx, `
		SELECT product_id, quantity, updated_at
		FROM finished_stock WHERE product_id = $1`, productID, "get stock")
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// Crea antes la fila en cero si no existe, para que dos entradas simultáneas del mismo
// producto también se serialicen.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.FinishedStock, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO finished_stock (product_id, quantity, updated_at)
		VALUES ($1, 0, now())
		ON CONFLICT (product_id) DO NOTHING`, productID); err != nil {
		return nil, wrapErr("ensure stock row", err)
	}
	return r.get(ctx, `
		SELECT product_id, quantity, updated_at
		FROM finished_stock WHERE product_id = $1
		FOR UPDATE`, productID, "get stock for update")
}

func (r *StockRepo) get(ctx context.Context, query, productID, op string) (*entity.FinishedStock, error) {
	var s entity.FinishedStock
	err := r.q.QueryRow(ctx, query, productID).Scan(&s.ProductID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.FinishedStock{ProductID: productID}, nil
		}
		return nil, wrapErr(op, err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad en stock del producto.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.FinishedStock) error {
	query := `
		INSERT INTO finished_stock (product_id, quantity, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, stock.ProductID, stock.Quantity, stock.UpdatedAt); err != nil {
		return wrapErr("upsert stock", err)
	}
	return nil
}

// StockMovementRepo movimientos de stock de producto terminado.
type StockMovementRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

var movementColumns = []string{
	"id", "product_id", "type", "quantity", "previous_quantity", "new_quantity",
	"unit_cost", "total_cost", "reason", "reference_id", "reference_type", "created_at", "created_by",
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	sqlStr, args, err := r.sb.
		Insert("stock_movements").
		Columns(movementColumns...).
		Values(m.ID, m.ProductID, m.Type, m.Quantity, m.PreviousQuantity, m.NewQuantity,
			m.UnitCost, m.TotalCost, m.Reason, nullable(m.ReferenceID), nullable(m.ReferenceType),
			m.CreatedAt, nullable(m.CreatedBy)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sqlStr, args...); err != nil {
		return wrapErr("insert stock movement", err)
	}
	return nil
}

// ListByProduct lista los últimos movimientos del producto.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.StockMovement, error) {
	if !validUUID(productID) {
		return []*entity.StockMovement{}, nil
	}
	sqlStr, args, err := r.sb.Select(movementColumns...).
		From("stock_movements").
		Where(sq.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "seq DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, wrapErr("list stock movements", err)
	}
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, wrapErr("scan stock movement", err)
		}
		list = append(list, m)
	}
	return list, wrapErr("list stock movements", rows.Err())
}

// FindByReference obtiene el movimiento generado por una referencia (p. ej. la finalización de un lote).
func (r *StockMovementRepo) FindByReference(ctx context.Context, referenceType, referenceID string) (*entity.StockMovement, error) {
	if !validUUID(referenceID) {
		return nil, nil
	}
	sqlStr, args, err := r.sb.Select(movementColumns...).
		From("stock_movements").
		Where(sq.Eq{"reference_type": referenceType, "reference_id": referenceID}).
		OrderBy("seq").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	m, err := scanMovement(r.q.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("find stock movement", err)
	}
	return m, nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var refID, refType, createdBy *string
	if err := row.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.PreviousQuantity, &m.NewQuantity,
		&m.UnitCost, &m.TotalCost, &m.Reason, &refID, &refType, &m.CreatedAt, &createdBy); err != nil {
		return nil, err
	}
	m.ReferenceID = deref(refID)
	m.ReferenceType = deref(refType)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
