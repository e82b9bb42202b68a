package repository

import (
	"context"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para movimientos de stock (DIP).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.StockMovement, error)
	// FindByReference devuelve el movimiento que originó la referencia; (nil, nil) si no hay.
	FindByReference(ctx context.Context, referenceType, referenceID string) (*entity.StockMovement, error)
}
