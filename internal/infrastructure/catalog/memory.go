package catalog

import (
	"context"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/infrastructure/memory"
)

type memoryWriter struct {
	store *memory.Store
}

// NewMemoryWriter adapta el almacenamiento en memoria como destino del catálogo.
func NewMemoryWriter(store *memory.Store) Writer {
	return memoryWriter{store: store}
}

func (w memoryWriter) UpsertLocation(_ context.Context, l *entity.Location) error {
	w.store.AddLocation(l)
	return nil
}

func (w memoryWriter) UpsertProduct(_ context.Context, p *entity.Product) error {
	w.store.AddProduct(p)
	return nil
}

func (w memoryWriter) UpsertMaterial(_ context.Context, m *entity.RawMaterial) error {
	w.store.AddMaterial(m)
	return nil
}
