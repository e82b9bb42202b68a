package entity

import "time"

// Etapas de producción de un lote.
const (
	StageCutting  = "cutting"  // corte
	StageSewing   = "sewing"   // costura
	StageReview   = "review"   // revisión
	StagePacking  = "packing"  // embalaje
	StageFinished = "finished" // finalizado (terminal)
)

// Estados de un lote.
const (
	LotStatusInProcess = "in_process"
	LotStatusInTransit = "in_transit" // reservado: ninguna operación lo asigna hoy
	LotStatusFinished  = "finished"
)

// Stages devuelve las etapas en su orden conceptual (corte → costura → revisión → embalaje → finalizado).
func Stages() []string {
	return []string{StageCutting, StageSewing, StageReview, StagePacking, StageFinished}
}

// ValidStage indica si s es una etapa conocida (incluida la terminal).
func ValidStage(s string) bool {
	for _, st := range Stages() {
		if st == s {
			return true
		}
	}
	return false
}

// WorkStage indica si s es una etapa no terminal, es decir, una etapa a la que se puede mover un lote.
func WorkStage(s string) bool {
	return s != StageFinished && ValidStage(s)
}

// ProductionLot representa un lote de pares que avanza por las etapas de producción.
// Quantity solo cambia por división; un lote finalizado conserva su cantidad y sale de las vistas activas.
type ProductionLot struct {
	ID                    string
	ProductID             string
	Quantity              int
	Stage                 string
	Status                string
	CurrentLocationID     string
	OriginLocationID      string
	DestinationLocationID *string
	SourceMaterialID      *string
	ParentLotID           *string // lote del que se dividió, nil si es un lote original
	Notes                 string
	StartedAt             time.Time
	FinishedAt            *time.Time
	Version               int // token de concurrencia optimista; +1 en cada actualización
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Finished indica si el lote ya fue finalizado.
func (l *ProductionLot) Finished() bool {
	return l.Status == LotStatusFinished
}

// Clone devuelve una copia independiente del lote (incluidos los punteros opcionales).
func (l *ProductionLot) Clone() *ProductionLot {
	if l == nil {
		return nil
	}
	c := *l
	c.DestinationLocationID = cloneString(l.DestinationLocationID)
	c.SourceMaterialID = cloneString(l.SourceMaterialID)
	c.ParentLotID = cloneString(l.ParentLotID)
	if l.FinishedAt != nil {
		t := *l.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
