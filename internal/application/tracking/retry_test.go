package tracking_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/produccion-api/internal/application/tracking"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/infrastructure/memory"
)

// txRunnerMock devuelve el error programado o, si es nil, delega en el almacén real.
type txRunnerMock struct {
	mock.Mock
	store *memory.Store
}

func (m *txRunnerMock) RunTracking(ctx context.Context, fn func(repos tracking.TxRepos) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return m.store.RunTracking(ctx, fn)
}

// blockingRunner espera hasta que venza el contexto del intento.
type blockingRunner struct{ calls int }

func (b *blockingRunner) RunTracking(ctx context.Context, _ func(repos tracking.TxRepos) error) error {
	b.calls++
	<-ctx.Done()
	return ctx.Err()
}

// ackLostRunner confirma la transacción pero en la primera llamada informa un fallo transitorio,
// como un commit aplicado cuya respuesta no llegó antes del timeout.
type ackLostRunner struct {
	store *memory.Store
	calls int
}

func (r *ackLostRunner) RunTracking(ctx context.Context, fn func(repos tracking.TxRepos) error) error {
	r.calls++
	if err := r.store.RunTracking(ctx, fn); err != nil {
		return err
	}
	if r.calls == 1 {
		return fmt.Errorf("%w: commit sin confirmación", domain.ErrTransient)
	}
	return nil
}

// interleavedRunner ejecuta before y falla de forma transitoria en la primera llamada sin tocar
// el almacén; después delega.
type interleavedRunner struct {
	store  *memory.Store
	before func(ctx context.Context)
	calls  int
}

func (r *interleavedRunner) RunTracking(ctx context.Context, fn func(repos tracking.TxRepos) error) error {
	r.calls++
	if r.calls == 1 {
		r.before(ctx)
		return domain.ErrTransient
	}
	return r.store.RunTracking(ctx, fn)
}

func retryFixture(t *testing.T, runner tracking.TxRunner, cfg tracking.Config) (*fixture, *spyRecorder) {
	t.Helper()
	f := newFixture(t)
	rec := newSpyRecorder()
	tr, _ := newTracker(f.store, runner, nil, rec, cfg)
	f.tracker = tr
	f.recorder = rec
	return f, rec
}

func TestRetry_ConflictoDeVersionSeReintenta(t *testing.T) {
	runner := &txRunnerMock{}
	f, rec := retryFixture(t, runner, tracking.Config{MaxAttempts: 3, BaseBackoff: time.Millisecond})
	runner.store = f.store
	id := f.createLot(t, 100)

	runner.On("RunTracking", mock.Anything).Return(domain.ErrVersionConflict).Once()
	runner.On("RunTracking", mock.Anything).Return(nil).Once()

	res, err := f.tracker.MoveOrSplit(context.Background(), tracking.MoveInput{
		LotID: id, NewStage: entity.StageSewing, DestinationID: f.locB.ID, Quantity: 40,
	})
	require.NoError(t, err)
	assert.True(t, res.Split)
	runner.AssertNumberOfCalls(t, "RunTracking", 2)
	assert.Equal(t, 1, rec.retries[tracking.OpMove+"/version_conflict"])
	assert.Equal(t, 60, f.lot(t, id).Quantity)
}

func TestRetry_TransitorioAgotaIntentos(t *testing.T) {
	runner := &txRunnerMock{}
	f, rec := retryFixture(t, runner, tracking.Config{MaxAttempts: 3, BaseBackoff: time.Millisecond})
	runner.store = f.store
	id := f.createLot(t, 10)

	runner.On("RunTracking", mock.Anything).Return(domain.ErrTransient)

	_, err := f.tracker.Finalize(context.Background(), tracking.FinalizeInput{LotID: id})
	assert.ErrorIs(t, err, domain.ErrTransient)
	runner.AssertNumberOfCalls(t, "RunTracking", 3)
	assert.Equal(t, 2, rec.retries[tracking.OpFinalize+"/transient"], "dos esperas entre tres intentos")
	assert.Equal(t, 1, rec.operations[tracking.OpFinalize+"/error"])
	assert.Equal(t, entity.LotStatusInProcess, f.lot(t, id).Status)
}

func TestRetry_ErroresTerminalesNoSeReintentan(t *testing.T) {
	for _, terminal := range []error{domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrLotFinished} {
		runner := &txRunnerMock{}
		f, rec := retryFixture(t, runner, tracking.Config{MaxAttempts: 5, BaseBackoff: time.Millisecond})
		runner.store = f.store
		id := f.createLot(t, 10)

		runner.On("RunTracking", mock.Anything).Return(terminal)

		_, err := f.tracker.MoveOrSplit(context.Background(), tracking.MoveInput{
			LotID: id, NewStage: entity.StageSewing, DestinationID: f.locB.ID, Quantity: 5,
		})
		assert.ErrorIs(t, err, terminal)
		runner.AssertNumberOfCalls(t, "RunTracking", 1)
		assert.Empty(t, rec.retries)
	}
}

func TestRetry_TimeoutPorIntentoEsTransitorio(t *testing.T) {
	runner := &blockingRunner{}
	f, rec := retryFixture(t, runner, tracking.Config{
		MaxAttempts: 2, BaseBackoff: time.Millisecond, StoreTimeout: 10 * time.Millisecond,
	})
	id := f.createLot(t, 10)

	_, err := f.tracker.Finalize(context.Background(), tracking.FinalizeInput{LotID: id})
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, 1, rec.retries[tracking.OpFinalize+"/transient"])
}

func TestRetry_ContextoDelLlamadorCanceladoCorta(t *testing.T) {
	runner := &txRunnerMock{}
	f, rec := retryFixture(t, runner, tracking.Config{MaxAttempts: 5, BaseBackoff: time.Millisecond})
	runner.store = f.store
	id := f.createLot(t, 10)

	ctx, cancel := context.WithCancel(context.Background())
	runner.On("RunTracking", mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(domain.ErrVersionConflict)

	_, err := f.tracker.MoveOrSplit(ctx, tracking.MoveInput{
		LotID: id, NewStage: entity.StageSewing, DestinationID: f.locB.ID, Quantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	runner.AssertNumberOfCalls(t, "RunTracking", 1)
	assert.Empty(t, rec.retries)
}

func TestRetry_FinalizeConfirmadoSinRespuestaNoDuplicaStock(t *testing.T) {
	runner := &ackLostRunner{}
	f, rec := retryFixture(t, runner, tracking.Config{MaxAttempts: 3, BaseBackoff: time.Millisecond})
	runner.store = f.store
	id := f.createLot(t, 8)
	ctx := context.Background()

	adj, err := f.tracker.Finalize(ctx, tracking.FinalizeInput{LotID: id, UserID: testUser})
	require.NoError(t, err)
	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, 1, rec.retries[tracking.OpFinalize+"/transient"])
	assert.Equal(t, 1, rec.operations[tracking.OpFinalize+"/ok"])

	assert.Equal(t, 8, adj.Delta)
	assert.Equal(t, 0, adj.PreviousQuantity)
	assert.Equal(t, 8, adj.NewQuantity)
	onHand, err := f.stock.GetOnHand(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, onHand, "la entrada al stock se aplica una sola vez")

	movs, err := f.stock.ListMovements(ctx, f.product.ID, 10)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, movs[0].ID, adj.MovementID)
	assert.Equal(t, 1, f.historyLen(t))
}

func TestRetry_FinalizeDeOtroUsuarioSigueSiendoTerminal(t *testing.T) {
	runner := &interleavedRunner{}
	f, _ := retryFixture(t, runner, tracking.Config{MaxAttempts: 3, BaseBackoff: time.Millisecond})
	runner.store = f.store
	id := f.createLot(t, 5)
	other, _ := newTracker(f.store, f.store, nil, nil, tracking.Config{})
	runner.before = func(ctx context.Context) {
		_, err := other.Finalize(ctx, tracking.FinalizeInput{LotID: id, UserID: "otro"})
		require.NoError(t, err)
	}

	_, err := f.tracker.Finalize(context.Background(), tracking.FinalizeInput{LotID: id, UserID: testUser})
	assert.ErrorIs(t, err, domain.ErrLotFinished)
	onHand, _ := f.stock.GetOnHand(context.Background(), f.product.ID)
	assert.Equal(t, 5, onHand)
}
