package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/produccion-api/internal/application/tracking"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
	"github.com/jhoicas/produccion-api/internal/infrastructure/memory"
)

func newLot(id string, qty int, startedAt time.Time) *entity.ProductionLot {
	return &entity.ProductionLot{
		ID:                id,
		ProductID:         memory.DemoProductID,
		Quantity:          qty,
		Stage:             entity.StageCutting,
		Status:            entity.LotStatusInProcess,
		CurrentLocationID: memory.DemoLocationOwnID,
		OriginLocationID:  memory.DemoLocationOwnID,
		StartedAt:         startedAt,
		Version:           1,
		CreatedAt:         startedAt,
		UpdatedAt:         startedAt,
	}
}

func TestLotRepo_UpdateConVersionDesactualizada(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	lots := store.Lots()
	require.NoError(t, lots.Create(ctx, newLot("l1", 100, time.Now())))

	first, err := lots.GetByID(ctx, "l1")
	require.NoError(t, err)
	second, err := lots.GetByID(ctx, "l1")
	require.NoError(t, err)

	first.Quantity = 60
	require.NoError(t, lots.Update(ctx, first, 1))
	assert.Equal(t, 2, first.Version)

	second.Quantity = 50
	err = lots.Update(ctx, second, 1)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	got, err := lots.GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, 60, got.Quantity)
}

func TestLotRepo_GetByIDInexistenteDevuelveNil(t *testing.T) {
	got, err := memory.NewStore().Lots().GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLotRepo_GetByIDDevuelveCopia(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Lots().Create(ctx, newLot("l1", 10, time.Now())))

	got, _ := store.Lots().GetByID(ctx, "l1")
	got.Quantity = 999

	again, _ := store.Lots().GetByID(ctx, "l1")
	assert.Equal(t, 10, again.Quantity, "modificar la copia no debe afectar el almacén")
}

func TestLotRepo_ListActiveFiltraYOrdena(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	lots := store.Lots()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, lots.Create(ctx, newLot("viejo", 10, base)))
	require.NoError(t, lots.Create(ctx, newLot("nuevo", 20, base.Add(time.Hour))))
	sewing := newLot("costura", 30, base.Add(30*time.Minute))
	sewing.Stage = entity.StageSewing
	require.NoError(t, lots.Create(ctx, sewing))
	done := newLot("fin", 5, base.Add(2*time.Hour))
	done.Status = entity.LotStatusFinished
	done.Stage = entity.StageFinished
	require.NoError(t, lots.Create(ctx, done))

	all, err := lots.ListActive(ctx, repository.LotFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "nuevo", all[0].ID)
	assert.Equal(t, "costura", all[1].ID)
	assert.Equal(t, "viejo", all[2].ID)

	onlySewing, err := lots.ListActive(ctx, repository.LotFilter{Stage: entity.StageSewing})
	require.NoError(t, err)
	require.Len(t, onlySewing, 1)
	assert.Equal(t, "costura", onlySewing[0].ID)

	counts, err := lots.CountByStatus(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []repository.LotStatusCount{
		{Status: entity.LotStatusFinished, Count: 1},
		{Status: entity.LotStatusInProcess, Count: 3},
	}, counts)
}

func TestRunTracking_ErrorDescartaCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Lots().Create(ctx, newLot("l1", 100, time.Now())))

	boom := errors.New("boom")
	err := store.RunTracking(ctx, func(repos tracking.TxRepos) error {
		lot, err := repos.Lots.GetByID(ctx, "l1")
		require.NoError(t, err)
		lot.Quantity = 40
		require.NoError(t, repos.Lots.Update(ctx, lot, 1))
		require.NoError(t, repos.History.Append(ctx, &entity.LotHistoryEntry{ID: "h1", LotID: "l1"}))
		require.NoError(t, repos.Stock.Upsert(ctx, &entity.FinishedStock{ProductID: "p1", Quantity: 40}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	lot, _ := store.Lots().GetByID(ctx, "l1")
	assert.Equal(t, 100, lot.Quantity)
	assert.Equal(t, 1, lot.Version)
	hist, _ := store.History().ListRecent(ctx, 10)
	assert.Empty(t, hist)
	stock, _ := store.Stock().Get(ctx, "p1")
	assert.Equal(t, 0, stock.Quantity)
}

func TestRunTracking_CommitPublicaCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	err := store.RunTracking(ctx, func(repos tracking.TxRepos) error {
		if err := repos.Lots.Create(ctx, newLot("l1", 10, time.Now())); err != nil {
			return err
		}
		return repos.MoveRequests.Create(ctx, &entity.MoveRequest{Key: "k1", LotID: "l1", MovedLotID: "l1"})
	})
	require.NoError(t, err)

	lot, _ := store.Lots().GetByID(ctx, "l1")
	require.NotNil(t, lot)
	req, err := store.MoveRequests().Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "l1", req.MovedLotID)

	// Clave repetida: se informa como conflicto de versión para que el reintento la relea
	err = store.MoveRequests().Create(ctx, &entity.MoveRequest{Key: "k1", LotID: "l1"})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestRunTracking_ContextoCanceladoNoConfirma(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())

	err := store.RunTracking(ctx, func(repos tracking.TxRepos) error {
		if err := repos.Lots.Create(ctx, newLot("l1", 10, time.Now())); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	lot, _ := store.Lots().GetByID(context.Background(), "l1")
	assert.Nil(t, lot)
}

func TestStockRepo_SinFilaDevuelveCero(t *testing.T) {
	stock, err := memory.NewStore().Stock().Get(context.Background(), "p-x")
	require.NoError(t, err)
	assert.Equal(t, "p-x", stock.ProductID)
	assert.Equal(t, 0, stock.Quantity)
}

func TestLocationRepo_ListActiveOrdenadoPorNombre(t *testing.T) {
	store := memory.NewStore()
	store.SeedDemo()
	store.AddLocation(&entity.Location{ID: "x", Name: "Bodega cerrada", Active: false})

	list, err := store.Locations().ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Taller Víctor", list[0].Name)
	assert.Equal(t, "Unidad principal", list[1].Name)
}

func TestStockMovementRepo_FindByReference(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	movs := store.Movements()
	require.NoError(t, movs.Create(ctx, &entity.StockMovement{ID: "m1", ProductID: "p1", Type: entity.MovementTypeIn, Quantity: 3}))
	require.NoError(t, movs.Create(ctx, &entity.StockMovement{
		ID: "m2", ProductID: "p1", Type: entity.MovementTypeIn, Quantity: 5,
		ReferenceID: "l1", ReferenceType: entity.ReferenceTypeProductionLot,
	}))

	m, err := movs.FindByReference(ctx, entity.ReferenceTypeProductionLot, "l1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "m2", m.ID)

	m, err = movs.FindByReference(ctx, entity.ReferenceTypeProductionLot, "l2")
	require.NoError(t, err)
	assert.Nil(t, m)
}
