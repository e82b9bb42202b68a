package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/jhoicas/produccion-api/internal/application/inventory"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/production"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
	"github.com/jhoicas/produccion-api/pkg/logger"
)

// Nombres de operación para logs y métricas.
const (
	OpCreate   = "create_lot"
	OpMove     = "move_lot"
	OpFinalize = "finalize_lot"
)

// Deps dependencias del rastreador. Publisher, Metrics y Sheets son opcionales.
type Deps struct {
	TxRunner  TxRunner
	Lots      repository.LotRepository
	History   repository.LotHistoryRepository
	Products  repository.ProductRepository
	Locations repository.LocationRepository
	Materials repository.RawMaterialRepository
	Inventory Inventory
	Publisher EventPublisher
	Metrics   Recorder
	Sheets    LotSheetGenerator
	Logger    *logger.Logger
}

// Tracker es el caso de uso de rastreo de lotes de producción: creación, movimiento o división
// entre etapas/locales, finalización con entrada al stock y consultas.
type Tracker struct {
	txRunner  TxRunner
	lots      repository.LotRepository
	history   repository.LotHistoryRepository
	products  repository.ProductRepository
	locations repository.LocationRepository
	materials repository.RawMaterialRepository
	inventory Inventory
	publisher EventPublisher
	metrics   Recorder
	sheets    LotSheetGenerator
	log       *logger.Logger
	cfg       Config
	now       func() time.Time
}

// NewTracker construye el rastreador.
func NewTracker(deps Deps, cfg Config) *Tracker {
	t := &Tracker{
		txRunner:  deps.TxRunner,
		lots:      deps.Lots,
		history:   deps.History,
		products:  deps.Products,
		locations: deps.Locations,
		materials: deps.Materials,
		inventory: deps.Inventory,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		sheets:    deps.Sheets,
		log:       deps.Logger,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
	if t.publisher == nil {
		t.publisher = nopPublisher{}
	}
	if t.metrics == nil {
		t.metrics = nopRecorder{}
	}
	if t.log == nil {
		t.log = logger.Nop()
	}
	return t
}

// CreateLotInput entrada para iniciar un lote.
type CreateLotInput struct {
	ProductID        string
	Quantity         int
	Stage            string // vacío = corte
	LocationID       string
	SourceMaterialID string
	Notes            string
	UserID           string
}

// MoveInput entrada para mover (o dividir) un lote.
type MoveInput struct {
	LotID          string
	NewStage       string
	DestinationID  string
	Quantity       int
	Note           string
	IdempotencyKey string
	UserID         string
}

// MoveResult resultado de un movimiento. RemainderLotID solo se informa en divisiones.
type MoveResult struct {
	MovedLotID     string
	RemainderLotID *string
	Split          bool
	Replayed       bool // la clave de idempotencia ya existía; no se escribió nada
}

// FinalizeInput entrada para finalizar un lote.
type FinalizeInput struct {
	LotID  string
	Note   string
	UserID string
}

// CreateLot valida referencias e inserta un lote en proceso. La creación no genera historial.
func (t *Tracker) CreateLot(ctx context.Context, in CreateLotInput) (string, error) {
	lot, err := t.createLot(ctx, in)
	t.metrics.ObserveOperation(OpCreate, resultLabel(err))
	if err != nil {
		return "", err
	}
	t.log.Info().
		Str("lot_id", lot.ID).
		Str("product_id", lot.ProductID).
		Int("quantity", lot.Quantity).
		Str("stage", lot.Stage).
		Str("location_id", lot.CurrentLocationID).
		Msg("lote de producción iniciado")
	return lot.ID, nil
}

func (t *Tracker) createLot(ctx context.Context, in CreateLotInput) (*entity.ProductionLot, error) {
	if in.ProductID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: producto y local son obligatorios", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	stage := in.Stage
	if stage == "" {
		stage = entity.StageCutting
	}
	if err := production.ValidateWorkStage(stage); err != nil {
		return nil, err
	}

	product, err := t.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	if _, err := t.activeLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}
	var sourceID *string
	if in.SourceMaterialID != "" {
		material, err := t.materials.GetByID(ctx, in.SourceMaterialID)
		if err != nil {
			return nil, err
		}
		if material == nil {
			return nil, fmt.Errorf("%w: insumo %s", domain.ErrNotFound, in.SourceMaterialID)
		}
		sourceID = &material.ID
	}

	now := t.now()
	lot := &entity.ProductionLot{
		ID:                uuid.New().String(),
		ProductID:         product.ID,
		Quantity:          in.Quantity,
		Stage:             stage,
		Status:            entity.LotStatusInProcess,
		CurrentLocationID: in.LocationID,
		OriginLocationID:  in.LocationID,
		SourceMaterialID:  sourceID,
		Notes:             strings.TrimSpace(in.Notes),
		StartedAt:         now,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = t.withRetry(ctx, OpCreate, func(ctx context.Context) error {
		return t.lots.Create(ctx, lot)
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// MoveOrSplit mueve el lote completo (actualización en sitio, un registro de historial) o,
// si la cantidad es parcial, lo divide: el original conserva el resto en su etapa/local y nace
// un lote nuevo con lo movido (dos registros de historial). Todo en una transacción, con CAS
// sobre la versión del lote y reintento acotado ante conflictos.
func (t *Tracker) MoveOrSplit(ctx context.Context, in MoveInput) (*MoveResult, error) {
	res, err := t.moveOrSplit(ctx, in)
	t.metrics.ObserveOperation(OpMove, resultLabel(err))
	if err != nil {
		return nil, err
	}
	ev := t.log.Info().
		Str("lot_id", in.LotID).
		Str("moved_lot_id", res.MovedLotID).
		Int("quantity", in.Quantity).
		Str("stage", in.NewStage).
		Str("destination_id", in.DestinationID).
		Bool("replayed", res.Replayed)
	if res.Split {
		ev.Msg("lote dividido")
	} else {
		ev.Msg("lote movido")
	}
	return res, nil
}

func (t *Tracker) moveOrSplit(ctx context.Context, in MoveInput) (*MoveResult, error) {
	if in.LotID == "" || in.DestinationID == "" {
		return nil, fmt.Errorf("%w: lote y local de destino son obligatorios", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if err := production.ValidateWorkStage(in.NewStage); err != nil {
		return nil, err
	}
	if _, err := t.activeLocation(ctx, in.DestinationID); err != nil {
		return nil, err
	}

	var res *MoveResult
	err := t.withRetry(ctx, OpMove, func(ctx context.Context) error {
		return t.txRunner.RunTracking(ctx, func(repos TxRepos) error {
			out, err := t.applyMove(ctx, repos, in)
			if err != nil {
				return err
			}
			res = out
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// applyMove ejecuta un intento del movimiento dentro de la transacción: relee el lote,
// replanifica y escribe. Se ejecuta de nuevo completo en cada reintento.
func (t *Tracker) applyMove(ctx context.Context, repos TxRepos, in MoveInput) (*MoveResult, error) {
	if in.IdempotencyKey != "" {
		prev, err := repos.MoveRequests.Get(ctx, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			if !prev.SameRequest(in.LotID, in.NewStage, in.DestinationID, in.Quantity) {
				return nil, domain.ErrIdempotencyKeyReused
			}
			return &MoveResult{
				MovedLotID:     prev.MovedLotID,
				RemainderLotID: prev.RemainderLotID,
				Split:          prev.RemainderLotID != nil,
				Replayed:       true,
			}, nil
		}
	}

	lot, err := repos.Lots.GetByID(ctx, in.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, in.LotID)
	}
	plan, err := production.PlanMove(lot, in.NewStage, in.Quantity)
	if err != nil {
		return nil, err
	}

	now := t.now()
	prevStage := lot.Stage
	prevLocation := lot.CurrentLocationID
	expected := lot.Version
	dest := in.DestinationID
	note := strings.TrimSpace(in.Note)

	var res *MoveResult
	switch plan.Kind {
	case production.MoveFull:
		lot.Stage = in.NewStage
		lot.DestinationLocationID = &dest
		lot.CurrentLocationID = dest
		lot.Status = entity.LotStatusInProcess
		lot.UpdatedAt = now
		if err := repos.Lots.Update(ctx, lot, expected); err != nil {
			return nil, err
		}
		if err := repos.History.Append(ctx, historyEntry(lot.ID, prevStage, in.NewStage, prevLocation, dest, plan.Moved, note, in.UserID, now)); err != nil {
			return nil, err
		}
		res = &MoveResult{MovedLotID: lot.ID}

	case production.MoveSplit:
		// 1. Reducir el lote original; queda en su etapa y local
		lot.Quantity = plan.Remainder
		lot.UpdatedAt = now
		if err := repos.Lots.Update(ctx, lot, expected); err != nil {
			return nil, err
		}
		// 2. Crear el lote nuevo con la cantidad movida
		parentID := lot.ID
		child := &entity.ProductionLot{
			ID:                    uuid.New().String(),
			ProductID:             lot.ProductID,
			Quantity:              plan.Moved,
			Stage:                 in.NewStage,
			Status:                entity.LotStatusInProcess,
			CurrentLocationID:     dest,
			OriginLocationID:      prevLocation,
			DestinationLocationID: &dest,
			SourceMaterialID:      lot.SourceMaterialID,
			ParentLotID:           &parentID,
			Notes:                 production.SplitLotNotes(note),
			StartedAt:             now,
			Version:               1,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := repos.Lots.Create(ctx, child); err != nil {
			return nil, err
		}
		// 3. Historial del lote original (auto-transición con el resto)
		if err := repos.History.Append(ctx, historyEntry(lot.ID, prevStage, prevStage, prevLocation, prevLocation,
			plan.Remainder, production.SplitSourceNote(plan.Moved, in.NewStage), in.UserID, now)); err != nil {
			return nil, err
		}
		// 4. Historial del lote nuevo
		if err := repos.History.Append(ctx, historyEntry(child.ID, prevStage, in.NewStage, prevLocation, dest,
			plan.Moved, production.SplitChildNote(note), in.UserID, now)); err != nil {
			return nil, err
		}
		remainder := lot.ID
		res = &MoveResult{MovedLotID: child.ID, RemainderLotID: &remainder, Split: true}
	}

	if in.IdempotencyKey != "" {
		err := repos.MoveRequests.Create(ctx, &entity.MoveRequest{
			Key:            in.IdempotencyKey,
			LotID:          in.LotID,
			NewStage:       in.NewStage,
			DestinationID:  in.DestinationID,
			Quantity:       in.Quantity,
			MovedLotID:     res.MovedLotID,
			RemainderLotID: res.RemainderLotID,
			CreatedAt:      now,
		})
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Finalize cierra el lote (etapa y estado finalizado, fecha de finalización) y da entrada a su
// cantidad en el stock de producto terminado, en una sola transacción. Tras confirmar, publica
// el evento de ajuste de stock; un fallo al publicar se registra pero no revierte la finalización.
func (t *Tracker) Finalize(ctx context.Context, in FinalizeInput) (*appinventory.StockAdjustment, error) {
	adj, err := t.finalize(ctx, in)
	t.metrics.ObserveOperation(OpFinalize, resultLabel(err))
	if err != nil {
		return nil, err
	}
	t.log.Info().
		Str("lot_id", adj.LotID).
		Str("product_id", adj.ProductID).
		Int("quantity", adj.Delta).
		Int("on_hand", adj.NewQuantity).
		Msg("lote finalizado y agregado al stock")

	evt := StockAdjustedEvent{
		EventID:          uuid.New().String(),
		ProductID:        adj.ProductID,
		LotID:            adj.LotID,
		Delta:            adj.Delta,
		PreviousQuantity: adj.PreviousQuantity,
		NewQuantity:      adj.NewQuantity,
		MovementID:       adj.MovementID,
		OccurredAt:       adj.At,
	}
	if err := t.publisher.PublishStockAdjusted(ctx, evt); err != nil {
		t.metrics.ObservePublishFailure()
		t.log.Error().Err(err).Str("lot_id", adj.LotID).Msg("publicar ajuste de stock")
	}
	return adj, nil
}

func (t *Tracker) finalize(ctx context.Context, in FinalizeInput) (*appinventory.StockAdjustment, error) {
	if in.LotID == "" {
		return nil, fmt.Errorf("%w: lote obligatorio", domain.ErrInvalidInput)
	}
	var (
		out *appinventory.StockAdjustment
		// un intento anterior falló de forma transitoria: su commit pudo llegar a aplicarse
		uncertain bool
	)
	err := t.withRetry(ctx, OpFinalize, func(ctx context.Context) error {
		err := t.txRunner.RunTracking(ctx, func(repos TxRepos) error {
			lot, err := repos.Lots.GetByID(ctx, in.LotID)
			if err != nil {
				return err
			}
			if uncertain && lot != nil && lot.Status == entity.LotStatusFinished {
				adj, err := recordedAdjustment(ctx, repos, lot, in.UserID)
				if err != nil {
					return err
				}
				if adj != nil {
					out = adj
					return nil
				}
			}
			if err := production.CanFinalize(lot); err != nil {
				return err
			}
			product, err := t.products.GetByID(ctx, lot.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, lot.ProductID)
			}

			now := t.now()
			prevStage := lot.Stage
			expected := lot.Version
			lot.Stage = entity.StageFinished
			lot.Status = entity.LotStatusFinished
			lot.FinishedAt = &now
			lot.UpdatedAt = now
			if err := repos.Lots.Update(ctx, lot, expected); err != nil {
				return err
			}

			adj, err := t.inventory.AdjustOnHandInTx(ctx, repos.Stock, repos.Movements, product, lot.Quantity, appinventory.AdjustmentRef{
				LotID:  lot.ID,
				UserID: in.UserID,
				Reason: "Finalización de producción - " + product.Name,
			})
			if err != nil {
				return err
			}

			entry := historyEntry(lot.ID, prevStage, entity.StageFinished, lot.CurrentLocationID, lot.CurrentLocationID,
				lot.Quantity, production.FinalizeNote(strings.TrimSpace(in.Note)), in.UserID, now)
			if err := repos.History.Append(ctx, entry); err != nil {
				return err
			}
			out = adj
			return nil
		})
		if errors.Is(err, domain.ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
			uncertain = true
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// recordedAdjustment reconstruye el ajuste de una finalización ya confirmada a partir de su
// movimiento de stock. Devuelve nil si el lote lo finalizó otro usuario o no hay movimiento.
func recordedAdjustment(ctx context.Context, repos TxRepos, lot *entity.ProductionLot, userID string) (*appinventory.StockAdjustment, error) {
	mov, err := repos.Movements.FindByReference(ctx, entity.ReferenceTypeProductionLot, lot.ID)
	if err != nil || mov == nil || mov.CreatedBy != userID {
		return nil, err
	}
	return &appinventory.StockAdjustment{
		ProductID:        mov.ProductID,
		LotID:            lot.ID,
		Delta:            mov.Quantity,
		PreviousQuantity: mov.PreviousQuantity,
		NewQuantity:      mov.NewQuantity,
		MovementID:       mov.ID,
		At:               mov.CreatedAt,
	}, nil
}

func (t *Tracker) activeLocation(ctx context.Context, id string) (*entity.Location, error) {
	loc, err := t.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil || !loc.Active {
		return nil, fmt.Errorf("%w: local %s", domain.ErrNotFound, id)
	}
	return loc, nil
}

func historyEntry(lotID, prevStage, newStage, prevLocation, newLocation string, qty int, note, userID string, at time.Time) *entity.LotHistoryEntry {
	return &entity.LotHistoryEntry{
		ID:                 uuid.New().String(),
		LotID:              lotID,
		PreviousStage:      &prevStage,
		NewStage:           newStage,
		PreviousLocationID: &prevLocation,
		NewLocationID:      &newLocation,
		Quantity:           qty,
		Note:               note,
		CreatedAt:          at,
		CreatedBy:          userID,
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
