package tracking_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/produccion-api/internal/application/inventory"
	"github.com/jhoicas/produccion-api/internal/application/tracking"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

type fakeSheetGenerator struct {
	got tracking.LotSheet
	err error
}

func (g *fakeSheetGenerator) GenerateLotSheet(_ context.Context, sheet tracking.LotSheet) ([]byte, error) {
	g.got = sheet
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.4"), nil
}

func sheetTracker(f *fixture, gen tracking.LotSheetGenerator) *tracking.Tracker {
	return tracking.NewTracker(tracking.Deps{
		TxRunner:  f.store,
		Lots:      f.store.Lots(),
		History:   f.store.History(),
		Products:  f.store.Products(),
		Locations: f.store.Locations(),
		Materials: f.store.Materials(),
		Inventory: appinventory.NewStockService(f.store, f.store.Stock(), f.store.Movements(), f.store.Products()),
		Sheets:    gen,
	}, tracking.Config{})
}

func TestDownloadLotSheet_ArmaFichaConHistorial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createLot(t, 20)
	_, err := f.tracker.MoveOrSplit(ctx, tracking.MoveInput{LotID: id, NewStage: entity.StageSewing, DestinationID: f.locB.ID, Quantity: 20})
	require.NoError(t, err)

	gen := &fakeSheetGenerator{}
	pdf, filename, err := sheetTracker(f, gen).DownloadLotSheet(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.True(t, strings.HasPrefix(filename, "lote-"+id[:8]))
	assert.True(t, strings.HasSuffix(filename, ".pdf"))

	assert.Equal(t, id, gen.got.Lot.ID)
	assert.Equal(t, f.product.Name, gen.got.Lot.ProductName)
	require.Len(t, gen.got.History, 1)
	assert.Equal(t, f.locB.Name, gen.got.History[0].NewLocationName)
}

func TestDownloadLotSheet_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := sheetTracker(f, &fakeSheetGenerator{}).DownloadLotSheet(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = f.tracker.DownloadLotSheet(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrTransient, "sin generador configurado")

	id := f.createLot(t, 5)
	boom := errors.New("fuente no encontrada")
	_, _, err = sheetTracker(f, &fakeSheetGenerator{err: boom}).DownloadLotSheet(ctx, id)
	assert.ErrorIs(t, err, boom)
}
