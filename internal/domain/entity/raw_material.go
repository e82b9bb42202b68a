package entity

import "time"

// RawMaterial representa un lote de insumo (cuero, forro, elástico) del que puede nacer un lote de producción.
type RawMaterial struct {
	ID        string
	Name      string
	Unit      string
	Batch     string
	Active    bool
	CreatedAt time.Time
}
