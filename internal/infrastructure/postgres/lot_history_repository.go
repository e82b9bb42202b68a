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

var (
	_ repository.LotHistoryRepository  = (*LotHistoryRepo)(nil)
	_ repository.MoveRequestRepository = (*MoveRequestRepo)(nil)
)

var historyColumns = []string{
	"id", "lot_id", "previous_stage", "new_stage", "previous_location_id",
	"new_location_id", "quantity", "note", "created_at", "created_by",
}

// LotHistoryRepo historial de lotes sobre PostgreSQL. Solo inserta y lee.
type LotHistoryRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// NewLotHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotHistoryRepository(q Querier) *LotHistoryRepo {
	return &LotHistoryRepo{q: q, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// Append inserta un registro de historial.
func (r *LotHistoryRepo) Append(ctx context.Context, e *entity.LotHistoryEntry) error {
	var createdBy *string
	if e.CreatedBy != "" {
		createdBy = &e.CreatedBy
	}
	sqlStr, args, err := r.sb.
		Insert("lot_history").
		Columns(historyColumns...).
		Values(e.ID, e.LotID, e.PreviousStage, e.NewStage, e.PreviousLocationID,
			e.NewLocationID, e.Quantity, e.Note, e.CreatedAt, createdBy).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, sqlStr, args...); err != nil {
		return wrapErr("insert lot history", err)
	}
	return nil
}

// ListRecent devuelve los últimos limit registros de todos los lotes.
func (r *LotHistoryRepo) ListRecent(ctx context.Context, limit int) ([]*entity.LotHistoryEntry, error) {
	q := r.sb.Select(historyColumns...).
		From("lot_history").
		OrderBy("created_at DESC", "seq DESC").
		Limit(uint64(limit))
	return r.list(ctx, q, "list lot history")
}

// ListByLot devuelve el historial completo de un lote.
func (r *LotHistoryRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.LotHistoryEntry, error) {
	if !validUUID(lotID) {
		return []*entity.LotHistoryEntry{}, nil
	}
	q := r.sb.Select(historyColumns...).
		From("lot_history").
		Where(sq.Eq{"lot_id": lotID}).
		OrderBy("created_at DESC", "seq DESC")
	return r.list(ctx, q, "list history by lot")
}

func (r *LotHistoryRepo) list(ctx context.Context, q sq.SelectBuilder, op string) ([]*entity.LotHistoryEntry, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	list := []*entity.LotHistoryEntry{}
	for rows.Next() {
		var e entity.LotHistoryEntry
		var createdBy *string
		if err := rows.Scan(&e.ID, &e.LotID, &e.PreviousStage, &e.NewStage, &e.PreviousLocationID,
			&e.NewLocationID, &e.Quantity, &e.Note, &e.CreatedAt, &createdBy); err != nil {
			return nil, wrapErr(op, err)
		}
		if createdBy != nil {
			e.CreatedBy = *createdBy
		}
		list = append(list, &e)
	}
	return list, wrapErr(op, rows.Err())
}

// MoveRequestRepo claves de idempotencia de movimientos.
type MoveRequestRepo struct {
	q Querier
}

// NewMoveRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMoveRequestRepository(q Querier) *MoveRequestRepo {
	return &MoveRequestRepo{q: q}
}

// Get devuelve el resultado guardado para la clave; (nil, nil) si no existe.
func (r *MoveRequestRepo) Get(ctx context.Context, key string) (*entity.MoveRequest, error) {
	query := `
		SELECT idempotency_key, lot_id, new_stage, destination_location_id, quantity,
			moved_lot_id, remainder_lot_id, created_at
		FROM move_requests WHERE idempotency_key = $1`
	var m entity.MoveRequest
	var dest *string
	err := r.q.QueryRow(ctx, query, key).Scan(&m.Key, &m.LotID, &m.NewStage, &dest, &m.Quantity,
		&m.MovedLotID, &m.RemainderLotID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get move request", err)
	}
	m.DestinationID = deref(dest)
	return &m, nil
}

// Create registra la clave. Si otra sesión la registró primero (23505) se informa como
// conflicto de versión: el reintento relee la clave y responde con el resultado guardado.
func (r *MoveRequestRepo) Create(ctx context.Context, m *entity.MoveRequest) error {
	query := `
		INSERT INTO move_requests (idempotency_key, lot_id, new_stage, destination_location_id, quantity,
			moved_lot_id, remainder_lot_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, m.Key, m.LotID, m.NewStage, nullable(m.DestinationID), m.Quantity,
		m.MovedLotID, m.RemainderLotID, m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVersionConflict
		}
		return wrapErr("insert move request", err)
	}
	return nil
}
