package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// ReferenceWriter carga datos de referencia (locales, productos, insumos). Lo usa cmd/seed;
// el rastreo solo los lee.
type ReferenceWriter struct {
	q Querier
}

// NewReferenceWriter construye el adaptador. Pasar pool o tx (Querier).
func NewReferenceWriter(q Querier) *ReferenceWriter {
	return &ReferenceWriter{q: q}
}

// UpsertLocation inserta o actualiza un local por ID.
func (w *ReferenceWriter) UpsertLocation(ctx context.Context, l *entity.Location) error {
	query := `
		INSERT INTO locations (id, name, kind, address, notes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, kind = EXCLUDED.kind, address = EXCLUDED.address,
			notes = EXCLUDED.notes, active = EXCLUDED.active, updated_at = EXCLUDED.updated_at`
	if _, err := w.q.Exec(ctx, query, l.ID, l.Name, l.Kind, l.Address, l.Notes, l.Active, l.UpdatedAt); err != nil {
		return wrapErr("upsert location", err)
	}
	return nil
}

// UpsertProduct inserta o actualiza un producto por ID.
func (w *ReferenceWriter) UpsertProduct(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, name, kind, size, internal_code, unit, unit_cost, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, kind = EXCLUDED.kind, size = EXCLUDED.size,
			internal_code = EXCLUDED.internal_code, unit = EXCLUDED.unit,
			unit_cost = EXCLUDED.unit_cost, active = EXCLUDED.active, updated_at = EXCLUDED.updated_at`
	_, err := w.q.Exec(ctx, query, p.ID, p.Name, p.Kind, p.Size, p.InternalCode, p.Unit, p.UnitCost, p.Active, p.UpdatedAt)
	if err != nil {
		return wrapErr("upsert product", err)
	}
	return nil
}

// UpsertMaterial inserta o actualiza un insumo por ID.
func (w *ReferenceWriter) UpsertMaterial(ctx context.Context, m *entity.RawMaterial) error {
	query := `
		INSERT INTO raw_materials (id, name, unit, batch, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, unit = EXCLUDED.unit, batch = EXCLUDED.batch, active = EXCLUDED.active`
	if _, err := w.q.Exec(ctx, query, m.ID, m.Name, m.Unit, m.Batch, m.Active, m.CreatedAt); err != nil {
		return wrapErr("upsert raw material", err)
	}
	return nil
}

// RunReference ejecuta fn con un ReferenceWriter atado a una transacción.
func (r *TxRunner) RunReference(ctx context.Context, fn func(w *ReferenceWriter) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewReferenceWriter(tx))
	})
}
