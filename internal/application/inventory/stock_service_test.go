package inventory_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/produccion-api/internal/application/inventory"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/infrastructure/memory"
)

func newService(t *testing.T) (*appinventory.StockService, *entity.Product) {
	t.Helper()
	store := memory.NewStore()
	product := &entity.Product{
		ID:       gofakeit.UUID(),
		Name:     gofakeit.ProductName(),
		Unit:     "pares",
		UnitCost: decimal.RequireFromString("2500.50"),
		Active:   true,
	}
	store.AddProduct(product)
	return appinventory.NewStockService(store, store.Stock(), store.Movements(), store.Products()), product
}

func TestAdjustOnHand_EntradaYSalida(t *testing.T) {
	svc, p := newService(t)
	ctx := context.Background()

	in, err := svc.AdjustOnHand(ctx, p.ID, 30, appinventory.AdjustmentRef{LotID: "lot-1", UserID: "admin", Reason: "finalización"})
	require.NoError(t, err)
	assert.Equal(t, 0, in.PreviousQuantity)
	assert.Equal(t, 30, in.NewQuantity)

	out, err := svc.AdjustOnHand(ctx, p.ID, -12, appinventory.AdjustmentRef{UserID: "admin", Reason: "despacho"})
	require.NoError(t, err)
	assert.Equal(t, 30, out.PreviousQuantity)
	assert.Equal(t, 18, out.NewQuantity)

	onHand, err := svc.GetOnHand(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 18, onHand)

	movs, err := svc.ListMovements(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeOut, movs[0].Type, "más recientes primero")
	assert.Equal(t, 12, movs[0].Quantity)
	assert.Empty(t, movs[0].ReferenceType)
	assert.Equal(t, entity.MovementTypeIn, movs[1].Type)
	assert.Equal(t, "lot-1", movs[1].ReferenceID)
	assert.Equal(t, entity.ReferenceTypeProductionLot, movs[1].ReferenceType)
	assert.True(t, decimal.RequireFromString("75015").Equal(movs[1].TotalCost), "30 × 2500.50")
}

func TestAdjustOnHand_NoPermiteStockNegativo(t *testing.T) {
	svc, p := newService(t)
	ctx := context.Background()

	_, err := svc.AdjustOnHand(ctx, p.ID, 5, appinventory.AdjustmentRef{})
	require.NoError(t, err)

	_, err = svc.AdjustOnHand(ctx, p.ID, -6, appinventory.AdjustmentRef{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	onHand, _ := svc.GetOnHand(ctx, p.ID)
	assert.Equal(t, 5, onHand, "el ajuste rechazado no modifica el stock")
	movs, _ := svc.ListMovements(ctx, p.ID, 0)
	assert.Len(t, movs, 1)
}

func TestAdjustOnHand_Validaciones(t *testing.T) {
	svc, p := newService(t)
	ctx := context.Background()

	_, err := svc.AdjustOnHand(ctx, "", 1, appinventory.AdjustmentRef{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.AdjustOnHand(ctx, p.ID, 0, appinventory.AdjustmentRef{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.AdjustOnHand(ctx, "nope", 1, appinventory.AdjustmentRef{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetOnHand_SinEntradasEsCero(t *testing.T) {
	svc, p := newService(t)
	onHand, err := svc.GetOnHand(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, onHand)
}
