package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock de producto terminado.
const (
	MovementTypeIn  = "in"  // entrada
	MovementTypeOut = "out" // salida
)

// Tipo de referencia de los movimientos originados por un lote de producción.
const ReferenceTypeProductionLot = "production_lot"

// StockMovement registra un cambio del stock de producto terminado con su causa.
type StockMovement struct {
	ID               string
	ProductID        string
	Type             string
	Quantity         int // siempre positivo; el sentido lo da Type
	PreviousQuantity int
	NewQuantity      int
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
	Reason           string
	ReferenceID      string // ID del lote que causó el movimiento
	ReferenceType    string
	CreatedAt        time.Time
	CreatedBy        string
}
