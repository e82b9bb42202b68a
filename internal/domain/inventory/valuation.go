package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/produccion-api/internal/domain"
)

// ApplyDelta calcula el nuevo stock disponible (servicio de dominio).
// El stock de producto terminado nunca queda negativo.
func ApplyDelta(onHand, delta int) (int, error) {
	next := onHand + delta
	if next < 0 {
		return onHand, fmt.Errorf("%w: stock insuficiente (disponible %d, ajuste %d)", domain.ErrInvalidInput, onHand, delta)
	}
	return next, nil
}

// Valuation valoriza un movimiento: Cantidad * CostoUnitario.
func Valuation(quantity int, unitCost decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(quantity)).Mul(unitCost)
}
