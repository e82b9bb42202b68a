package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

var lotColumns = []string{
	"id", "product_id", "quantity", "stage", "status",
	"current_location_id", "origin_location_id", "destination_location_id",
	"source_material_id", "parent_lot_id", "notes",
	"started_at", "finished_at", "version", "created_at", "updated_at",
}

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, lot *entity.ProductionLot) error {
	sqlStr, args, err := r.sb.
		Insert("production_lots").
		Columns(lotColumns...).
		Values(
			lot.ID, lot.ProductID, lot.Quantity, lot.Stage, lot.Status,
			lot.CurrentLocationID, lot.OriginLocationID, lot.DestinationLocationID,
			lot.SourceMaterialID, lot.ParentLotID, lot.Notes,
			lot.StartedAt, lot.FinishedAt, lot.Version, lot.CreatedAt, lot.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return wrapErr("insert lot", err)
	}
	return nil
}

// GetByID obtiene un lote por ID; (nil, nil) si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.ProductionLot, error) {
	if !validUUID(id) {
		return nil, nil
	}
	sqlStr, args, err := r.sb.Select(lotColumns...).From("production_lots").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	lot, err := scanLot(r.q.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get lot", err)
	}
	return lot, nil
}

// Update escribe el lote solo si la versión no cambió desde la lectura (CAS).
func (r *LotRepo) Update(ctx context.Context, lot *entity.ProductionLot, expectedVersion int) error {
	query := `
		UPDATE production_lots SET
			quantity = $3, stage = $4, status = $5, current_location_id = $6,
			destination_location_id = $7, notes = $8, finished_at = $9,
			version = version + 1, updated_at = $10
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		lot.ID, expectedVersion,
		lot.Quantity, lot.Stage, lot.Status, lot.CurrentLocationID,
		lot.DestinationLocationID, lot.Notes, lot.FinishedAt, lot.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update lot", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	lot.Version = expectedVersion + 1
	return nil
}

// ListActive lista los lotes no finalizados con filtros opcionales, más recientes primero.
func (r *LotRepo) ListActive(ctx context.Context, filter repository.LotFilter) ([]*entity.ProductionLot, error) {
	if (filter.LocationID != "" && !validUUID(filter.LocationID)) || (filter.ProductID != "" && !validUUID(filter.ProductID)) {
		return []*entity.ProductionLot{}, nil
	}
	q := r.sb.Select(lotColumns...).
		From("production_lots").
		Where(sq.NotEq{"status": entity.LotStatusFinished}).
		OrderBy("started_at DESC", "created_at DESC")
	if filter.Stage != "" {
		q = q.Where(sq.Eq{"stage": filter.Stage})
	}
	if filter.LocationID != "" {
		q = q.Where(sq.Eq{"current_location_id": filter.LocationID})
	}
	if filter.ProductID != "" {
		q = q.Where(sq.Eq{"product_id": filter.ProductID})
	}
	return r.list(ctx, q, "list active lots")
}

// ListByParent lista los lotes nacidos de divisiones del lote indicado.
func (r *LotRepo) ListByParent(ctx context.Context, parentID string) ([]*entity.ProductionLot, error) {
	if !validUUID(parentID) {
		return []*entity.ProductionLot{}, nil
	}
	q := r.sb.Select(lotColumns...).
		From("production_lots").
		Where(sq.Eq{"parent_lot_id": parentID}).
		OrderBy("created_at")
	return r.list(ctx, q, "list lots by parent")
}

// CountByStatus cuenta lotes por estado.
func (r *LotRepo) CountByStatus(ctx context.Context) ([]repository.LotStatusCount, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM production_lots GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, wrapErr("count lots", err)
	}
	defer rows.Close()
	var out []repository.LotStatusCount
	for rows.Next() {
		var c repository.LotStatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, wrapErr("scan lot count", err)
		}
		out = append(out, c)
	}
	return out, wrapErr("count lots", rows.Err())
}

func (r *LotRepo) list(ctx context.Context, q sq.SelectBuilder, op string) ([]*entity.ProductionLot, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.ProductionLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		list = append(list, lot)
	}
	return list, wrapErr(op, rows.Err())
}

func scanLot(row pgx.Row) (*entity.ProductionLot, error) {
	var l entity.ProductionLot
	err := row.Scan(
		&l.ID, &l.ProductID, &l.Quantity, &l.Stage, &l.Status,
		&l.CurrentLocationID, &l.OriginLocationID, &l.DestinationLocationID,
		&l.SourceMaterialID, &l.ParentLotID, &l.Notes,
		&l.StartedAt, &l.FinishedAt, &l.Version, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
