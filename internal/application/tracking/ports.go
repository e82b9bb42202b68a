package tracking

import (
	"context"
	"time"

	appinventory "github.com/jhoicas/produccion-api/internal/application/inventory"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Lots         repository.LotRepository
	History      repository.LotHistoryRepository
	MoveRequests repository.MoveRequestRepository
	Stock        repository.StockRepository
	Movements    repository.StockMovementRepository
}

// TxRunner ejecuta fn dentro de una transacción; Commit si fn devuelve nil, Rollback en otro caso.
// Toda operación de varias escrituras (división, finalización) pasa por aquí.
type TxRunner interface {
	RunTracking(ctx context.Context, fn func(repos TxRepos) error) error
}

// Inventory es el colaborador de stock que usa Finalize dentro de su transacción.
type Inventory interface {
	AdjustOnHandInTx(
		ctx context.Context,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
		product *entity.Product,
		delta int,
		ref appinventory.AdjustmentRef,
	) (*appinventory.StockAdjustment, error)
}

// StockAdjustedEvent se publica después de confirmar una finalización.
type StockAdjustedEvent struct {
	EventID          string    `json:"event_id"`
	ProductID        string    `json:"product_id"`
	LotID            string    `json:"lot_id"`
	Delta            int       `json:"delta"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	MovementID       string    `json:"movement_id"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// EventPublisher entrega eventos de stock a consumidores externos.
type EventPublisher interface {
	PublishStockAdjusted(ctx context.Context, evt StockAdjustedEvent) error
}

// Recorder registra métricas de las operaciones del rastreo.
type Recorder interface {
	ObserveOperation(operation, result string)
	ObserveRetry(operation, reason string)
	ObservePublishFailure()
}

// LotSheetGenerator genera la ficha (PDF) de un lote.
type LotSheetGenerator interface {
	GenerateLotSheet(ctx context.Context, sheet LotSheet) ([]byte, error)
}

type nopPublisher struct{}

func (nopPublisher) PublishStockAdjusted(context.Context, StockAdjustedEvent) error { return nil }

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string) {}
func (nopRecorder) ObserveRetry(string, string)     {}
func (nopRecorder) ObservePublishFailure()          {}
