package repository

import (
	"context"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar el stock de producto terminado.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve el stock del producto; cantidad 0 si aún no hay fila.
	Get(ctx context.Context, productID string) (*entity.FinishedStock, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID string) (*entity.FinishedStock, error)
	Upsert(ctx context.Context, stock *entity.FinishedStock) error
}
