package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// fakeQuerier registra las sentencias y responde con lo programado. Sin programación, cualquier
// llamada falla el test: sirve también para verificar que algo no llega al driver.
type fakeQuerier struct {
	t        *testing.T
	exec     func(sql string, args []any) (pgconn.CommandTag, error)
	queryRow func(sql string, args []any) pgx.Row
	calls    []string
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, sql)
	if f.exec == nil {
		f.t.Fatalf("Exec inesperado: %s", sql)
	}
	return f.exec(sql, args)
}

func (f *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, sql)
	f.t.Fatalf("Query inesperado: %s", sql)
	return nil, errors.New("query inesperado")
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, sql)
	if f.queryRow == nil {
		f.t.Fatalf("QueryRow inesperado: %s", sql)
	}
	return f.queryRow(sql, args)
}

type scanRow func(dest ...any) error

func (r scanRow) Scan(dest ...any) error { return r(dest...) }

const lotID = "6f1c0f8e-2f55-4d7e-9a57-3c6f2d4b8a10"

func TestLotRepo_UpdateSinFilasEsConflictoDeVersion(t *testing.T) {
	var gotArgs []any
	q := &fakeQuerier{t: t, exec: func(_ string, args []any) (pgconn.CommandTag, error) {
		gotArgs = args
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}}
	lot := &entity.ProductionLot{ID: lotID, Quantity: 60, Version: 1}

	err := NewLotRepository(q).Update(context.Background(), lot, 1)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.True(t, domain.Retryable(err))
	assert.Equal(t, 1, lot.Version, "sin filas afectadas la versión no avanza")

	require.Len(t, q.calls, 1)
	assert.Contains(t, q.calls[0], "WHERE id = $1 AND version = $2")
	assert.Contains(t, q.calls[0], "version = version + 1")
	require.GreaterOrEqual(t, len(gotArgs), 2)
	assert.Equal(t, lotID, gotArgs[0])
	assert.Equal(t, 1, gotArgs[1])
}

func TestLotRepo_UpdateAvanzaVersion(t *testing.T) {
	q := &fakeQuerier{t: t, exec: func(string, []any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}}
	lot := &entity.ProductionLot{ID: lotID, Quantity: 60, Version: 3}

	require.NoError(t, NewLotRepository(q).Update(context.Background(), lot, 3))
	assert.Equal(t, 4, lot.Version)
}

func TestLotRepo_UpdateErrorTransitorio(t *testing.T) {
	q := &fakeQuerier{t: t, exec: func(string, []any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, &pgconn.PgError{Code: codeSerializationFailure}
	}}
	err := NewLotRepository(q).Update(context.Background(), &entity.ProductionLot{ID: lotID}, 1)
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestMoveRequestRepo_ClaveDuplicadaEsConflictoDeVersion(t *testing.T) {
	q := &fakeQuerier{t: t, exec: func(string, []any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "move_requests_pkey"}
	}}
	err := NewMoveRequestRepository(q).Create(context.Background(), &entity.MoveRequest{
		Key: "k", LotID: lotID, NewStage: entity.StageSewing, Quantity: 40, MovedLotID: lotID,
	})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.True(t, domain.Retryable(err), "el reintento relee la clave y responde con lo guardado")
}

func TestMoveRequestRepo_CreateGuardaLaPeticion(t *testing.T) {
	var gotArgs []any
	q := &fakeQuerier{t: t, exec: func(_ string, args []any) (pgconn.CommandTag, error) {
		gotArgs = args
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}}
	dest := "0b7a3c1e-9d2f-4e8a-b6c5-1a2b3c4d5e6f"
	require.NoError(t, NewMoveRequestRepository(q).Create(context.Background(), &entity.MoveRequest{
		Key: "k", LotID: lotID, NewStage: entity.StageSewing, DestinationID: dest, Quantity: 40, MovedLotID: lotID,
	}))
	require.Len(t, gotArgs, 8)
	assert.Equal(t, entity.StageSewing, gotArgs[2])
	assert.Equal(t, &dest, gotArgs[3])
	assert.Equal(t, 40, gotArgs[4])
}

func TestStockRepo_GetForUpdateAseguraFilaYBloquea(t *testing.T) {
	now := time.Now()
	productID := "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	q := &fakeQuerier{
		t: t,
		exec: func(string, []any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("INSERT 0 0"), nil
		},
		queryRow: func(string, []any) pgx.Row {
			return scanRow(func(dest ...any) error {
				*dest[0].(*string) = productID
				*dest[1].(*int) = 7
				*dest[2].(*time.Time) = now
				return nil
			})
		},
	}

	s, err := NewStockRepository(q).GetForUpdate(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Quantity)

	require.Len(t, q.calls, 2, "primero asegura la fila, luego la bloquea")
	assert.Contains(t, q.calls[0], "ON CONFLICT (product_id) DO NOTHING")
	assert.Contains(t, q.calls[1], "FOR UPDATE")
}

func TestStockRepo_GetSinFilaEsCero(t *testing.T) {
	productID := "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	q := &fakeQuerier{t: t, queryRow: func(string, []any) pgx.Row {
		return scanRow(func(...any) error { return pgx.ErrNoRows })
	}}
	s, err := NewStockRepository(q).Get(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, productID, s.ProductID)
	assert.Zero(t, s.Quantity)
}

func TestRepos_IDMalformadoNoLlegaAlDriver(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{t: t}
	const bad = "not-a-uuid"

	lot, err := NewLotRepository(q).GetByID(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, lot)

	children, err := NewLotRepository(q).ListByParent(ctx, bad)
	require.NoError(t, err)
	assert.Empty(t, children)

	active, err := NewLotRepository(q).ListActive(ctx, repository.LotFilter{LocationID: bad})
	require.NoError(t, err)
	assert.Empty(t, active)

	loc, err := NewLocationRepository(q).GetByID(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, loc)

	product, err := NewProductRepository(q).GetByID(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, product)

	material, err := NewRawMaterialRepository(q).GetByID(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, material)

	history, err := NewLotHistoryRepository(q).ListByLot(ctx, bad)
	require.NoError(t, err)
	assert.Empty(t, history)

	stock, err := NewStockRepository(q).Get(ctx, bad)
	require.NoError(t, err)
	assert.Zero(t, stock.Quantity)

	movs, err := NewStockMovementRepository(q).ListByProduct(ctx, bad, 10)
	require.NoError(t, err)
	assert.Empty(t, movs)

	mov, err := NewStockMovementRepository(q).FindByReference(ctx, entity.ReferenceTypeProductionLot, bad)
	require.NoError(t, err)
	assert.Nil(t, mov)

	assert.Empty(t, q.calls)
}

func TestValidUUID(t *testing.T) {
	assert.True(t, validUUID(lotID))
	assert.True(t, validUUID("00000000-0000-0000-0000-0000000000a1"))
	assert.False(t, validUUID(""))
	assert.False(t, validUUID("not-a-uuid"))
	assert.False(t, validUUID("6f1c0f8e2f554d7e9a573c6f2d4b8a10"))
	assert.False(t, validUUID("{6f1c0f8e-2f55-4d7e-9a57-3c6f2d4b8a10}"))
	assert.False(t, validUUID("6f1c0f8e-2f55-4d7e-9a57-3c6f2d4b8a1z"))
}
