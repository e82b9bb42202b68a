package entity

import "time"

// LotHistoryEntry es un registro inmutable de una transición de un lote
// (movimiento, cada lado de una división, o finalización).
type LotHistoryEntry struct {
	ID                 string
	LotID              string
	PreviousStage      *string // nil solo en registros de inicio
	NewStage           string
	PreviousLocationID *string
	NewLocationID      *string
	Quantity           int
	Note               string
	CreatedAt          time.Time
	CreatedBy          string
}
