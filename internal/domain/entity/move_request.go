package entity

import "time"

// MoveRequest registra el resultado de un movimiento identificado por una clave de idempotencia
// generada por el cliente, para que un reintento tras timeout no divida el lote dos veces.
// Guarda también la petición original: la clave solo vale para repetir exactamente esa petición.
type MoveRequest struct {
	Key            string
	LotID          string
	NewStage       string
	DestinationID  string
	Quantity       int
	MovedLotID     string
	RemainderLotID *string
	CreatedAt      time.Time
}

// SameRequest indica si la petición coincide con la registrada bajo la clave.
func (m *MoveRequest) SameRequest(lotID, newStage, destinationID string, quantity int) bool {
	return m.LotID == lotID && m.NewStage == newStage &&
		m.DestinationID == destinationID && m.Quantity == quantity
}
