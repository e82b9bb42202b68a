package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto terminado (modelo de guante) que se fabrica en lotes.
// UnitCost es el costo de producción por unidad; se usa para valorizar las entradas al stock.
type Product struct {
	ID           string
	Name         string
	Kind         string // tipo de guante
	Size         string
	InternalCode string
	Unit         string // ej. "pares"
	UnitCost     decimal.Decimal
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
