// Package production contiene las reglas puras del rastreo de lotes: validación de etapas
// y el cálculo de movimiento completo o división con conservación de cantidad.
package production

import (
	"fmt"

	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// MoveKind distingue un movimiento completo de una división.
type MoveKind int

const (
	MoveFull  MoveKind = iota + 1 // se mueve todo el lote, se actualiza en sitio
	MoveSplit                     // se mueve una parte, nace un lote nuevo
)

// MovePlan es el resultado de planificar un movimiento sobre un lote leído.
type MovePlan struct {
	Kind      MoveKind
	Moved     int // cantidad que va a la nueva etapa/local
	Remainder int // cantidad que queda en el lote original (0 si es movimiento completo)
}

// PlanMove valida la petición contra el estado actual del lote y decide entre movimiento
// completo o división. Garantiza Moved + Remainder == lot.Quantity.
func PlanMove(lot *entity.ProductionLot, newStage string, quantity int) (MovePlan, error) {
	if lot == nil {
		return MovePlan{}, domain.ErrNotFound
	}
	if lot.Finished() {
		return MovePlan{}, domain.ErrLotFinished
	}
	if err := ValidateWorkStage(newStage); err != nil {
		return MovePlan{}, err
	}
	if quantity <= 0 {
		return MovePlan{}, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if quantity > lot.Quantity {
		return MovePlan{}, fmt.Errorf("%w: la cantidad no puede ser mayor que %d", domain.ErrInvalidInput, lot.Quantity)
	}
	if quantity == lot.Quantity {
		return MovePlan{Kind: MoveFull, Moved: quantity}, nil
	}
	return MovePlan{Kind: MoveSplit, Moved: quantity, Remainder: lot.Quantity - quantity}, nil
}

// ValidateWorkStage exige una etapa no terminal. No se impone orden entre etapas:
// un lote puede volver a una etapa anterior (retrabajo). La finalización solo ocurre vía Finalize.
func ValidateWorkStage(stage string) error {
	if stage == entity.StageFinished {
		return fmt.Errorf("%w: use la finalización para cerrar el lote", domain.ErrInvalidInput)
	}
	if !entity.WorkStage(stage) {
		return fmt.Errorf("%w: etapa desconocida %q", domain.ErrInvalidInput, stage)
	}
	return nil
}

// CanFinalize valida que el lote pueda finalizarse.
func CanFinalize(lot *entity.ProductionLot) error {
	if lot == nil {
		return domain.ErrNotFound
	}
	if lot.Finished() || lot.Stage == entity.StageFinished {
		return domain.ErrLotFinished
	}
	return nil
}
