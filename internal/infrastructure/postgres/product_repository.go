package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository     = (*ProductRepo)(nil)
	_ repository.RawMaterialRepository = (*RawMaterialRepo)(nil)
	_ repository.LocationRepository    = (*LocationRepo)(nil)
)

// ProductRepo lectura de productos (datos de referencia).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validUUID(id) {
		return nil, nil
	}
	query := `
		SELECT id, name, kind, size, internal_code, unit, unit_cost, active, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Kind, &p.Size, &p.InternalCode, &p.Unit, &p.UnitCost, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}
	return &p, nil
}

// RawMaterialRepo lectura de lotes de insumo.
type RawMaterialRepo struct {
	q Querier
}

// NewRawMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRawMaterialRepository(q Querier) *RawMaterialRepo {
	return &RawMaterialRepo{q: q}
}

// GetByID obtiene un insumo por ID.
func (r *RawMaterialRepo) GetByID(ctx context.Context, id string) (*entity.RawMaterial, error) {
	if !validUUID(id) {
		return nil, nil
	}
	query := `SELECT id, name, unit, batch, active, created_at FROM raw_materials WHERE id = $1`
	var m entity.RawMaterial
	err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.Unit, &m.Batch, &m.Active, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get raw material", err)
	}
	return &m, nil
}

// LocationRepo lectura de locales de producción.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationSelect = `
	SELECT id, name, kind, address, notes, active, created_at, updated_at
	FROM locations`

// GetByID obtiene un local por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	if !validUUID(id) {
		return nil, nil
	}
	l, err := scanLocation(r.q.QueryRow(ctx, locationSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get location", err)
	}
	return l, nil
}

// ListActive lista los locales activos ordenados por nombre.
func (r *LocationRepo) ListActive(ctx context.Context) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, locationSelect+` WHERE active ORDER BY name`)
	if err != nil {
		return nil, wrapErr("list locations", err)
	}
	defer rows.Close()
	list := []*entity.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, wrapErr("scan location", err)
		}
		list = append(list, l)
	}
	return list, wrapErr("list locations", rows.Err())
}

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	if err := row.Scan(&l.ID, &l.Name, &l.Kind, &l.Address, &l.Notes, &l.Active, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
