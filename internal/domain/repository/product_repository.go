package repository

import (
	"context"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura de productos (datos de referencia).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// RawMaterialRepository define el puerto de lectura de lotes de insumo.
type RawMaterialRepository interface {
	GetByID(ctx context.Context, id string) (*entity.RawMaterial, error)
}
