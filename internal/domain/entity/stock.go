package entity

import "time"

// FinishedStock representa el stock de producto terminado disponible (una fila por producto).
type FinishedStock struct {
	ProductID string
	Quantity  int
	UpdatedAt time.Time
}
