package repository

import (
	"context"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// LocationRepository define el puerto de lectura de locales de producción (datos de referencia).
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	ListActive(ctx context.Context) ([]*entity.Location, error)
}
