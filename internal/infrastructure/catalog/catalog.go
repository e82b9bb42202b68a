// Package catalog lee el catálogo de datos de referencia (locales, productos, insumos)
// desde un archivo YAML y lo carga en un almacenamiento.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// Catalog datos de referencia listos para cargar.
type Catalog struct {
	Locations []*entity.Location
	Products  []*entity.Product
	Materials []*entity.RawMaterial
}

// Writer destino de la carga. Lo cumplen postgres.ReferenceWriter y NewMemoryWriter.
type Writer interface {
	UpsertLocation(ctx context.Context, l *entity.Location) error
	UpsertProduct(ctx context.Context, p *entity.Product) error
	UpsertMaterial(ctx context.Context, m *entity.RawMaterial) error
}

type fileLocation struct {
	ID      string `mapstructure:"id"`
	Name    string `mapstructure:"name"`
	Kind    string `mapstructure:"kind"`
	Address string `mapstructure:"address"`
	Notes   string `mapstructure:"notes"`
	Active  *bool  `mapstructure:"active"`
}

type fileProduct struct {
	ID           string `mapstructure:"id"`
	Name         string `mapstructure:"name"`
	Kind         string `mapstructure:"kind"`
	Size         string `mapstructure:"size"`
	InternalCode string `mapstructure:"internal_code"`
	Unit         string `mapstructure:"unit"`
	UnitCost     string `mapstructure:"unit_cost"`
	Active       *bool  `mapstructure:"active"`
}

type fileMaterial struct {
	ID     string `mapstructure:"id"`
	Name   string `mapstructure:"name"`
	Unit   string `mapstructure:"unit"`
	Batch  string `mapstructure:"batch"`
	Active *bool  `mapstructure:"active"`
}

type file struct {
	Locations []fileLocation `mapstructure:"locations"`
	Products  []fileProduct  `mapstructure:"products"`
	Materials []fileMaterial `mapstructure:"materials"`
}

// Load lee y valida el catálogo en path (YAML).
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("catalog: leer %s: %w", path, err)
	}
	var f file
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("catalog: decodificar %s: %w", path, err)
	}
	return build(f, time.Now())
}

func build(f file, now time.Time) (*Catalog, error) {
	c := &Catalog{}
	seen := map[string]bool{}
	checkID := func(kind, id, name string) error {
		if strings.TrimSpace(id) == "" || strings.TrimSpace(name) == "" {
			return fmt.Errorf("catalog: %s sin id o nombre", kind)
		}
		if seen[id] {
			return fmt.Errorf("catalog: id %s repetido", id)
		}
		seen[id] = true
		return nil
	}

	for _, l := range f.Locations {
		if err := checkID("local", l.ID, l.Name); err != nil {
			return nil, err
		}
		if !entity.ValidLocationKind(l.Kind) {
			return nil, fmt.Errorf("catalog: local %s con tipo %q inválido", l.ID, l.Kind)
		}
		c.Locations = append(c.Locations, &entity.Location{
			ID: l.ID, Name: l.Name, Kind: l.Kind, Address: l.Address, Notes: l.Notes,
			Active: active(l.Active), CreatedAt: now, UpdatedAt: now,
		})
	}
	for _, p := range f.Products {
		if err := checkID("producto", p.ID, p.Name); err != nil {
			return nil, err
		}
		cost := decimal.Zero
		if p.UnitCost != "" {
			var err error
			if cost, err = decimal.NewFromString(p.UnitCost); err != nil {
				return nil, fmt.Errorf("catalog: producto %s: unit_cost %q: %w", p.ID, p.UnitCost, err)
			}
		}
		if cost.IsNegative() {
			return nil, fmt.Errorf("catalog: producto %s con costo negativo", p.ID)
		}
		unit := p.Unit
		if unit == "" {
			unit = "pares"
		}
		c.Products = append(c.Products, &entity.Product{
			ID: p.ID, Name: p.Name, Kind: p.Kind, Size: p.Size, InternalCode: p.InternalCode,
			Unit: unit, UnitCost: cost, Active: active(p.Active), CreatedAt: now, UpdatedAt: now,
		})
	}
	for _, m := range f.Materials {
		if err := checkID("insumo", m.ID, m.Name); err != nil {
			return nil, err
		}
		c.Materials = append(c.Materials, &entity.RawMaterial{
			ID: m.ID, Name: m.Name, Unit: m.Unit, Batch: m.Batch, Active: active(m.Active), CreatedAt: now,
		})
	}
	return c, nil
}

func active(b *bool) bool {
	return b == nil || *b
}

// Apply escribe el catálogo completo en w. Locales primero, luego productos e insumos.
func (c *Catalog) Apply(ctx context.Context, w Writer) error {
	for _, l := range c.Locations {
		if err := w.UpsertLocation(ctx, l); err != nil {
			return err
		}
	}
	for _, p := range c.Products {
		if err := w.UpsertProduct(ctx, p); err != nil {
			return err
		}
	}
	for _, m := range c.Materials {
		if err := w.UpsertMaterial(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
