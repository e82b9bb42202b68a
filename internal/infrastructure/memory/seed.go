package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// AddProduct registra (o reemplaza) un producto de referencia.
func (s *Store) AddProduct(p *entity.Product) {
	c := *p
	s.refMu.Lock()
	s.products[p.ID] = &c
	s.refMu.Unlock()
}

// AddLocation registra (o reemplaza) un local de producción.
func (s *Store) AddLocation(l *entity.Location) {
	c := *l
	s.refMu.Lock()
	s.locations[l.ID] = &c
	s.refMu.Unlock()
}

// AddMaterial registra (o reemplaza) un lote de insumo.
func (s *Store) AddMaterial(m *entity.RawMaterial) {
	c := *m
	s.refMu.Lock()
	s.materials[m.ID] = &c
	s.refMu.Unlock()
}

// IDs fijos de los datos de demostración.
const (
	DemoLocationOwnID      = "00000000-0000-0000-0000-0000000000a1"
	DemoLocationWorkshopID = "00000000-0000-0000-0000-0000000000a2"
	DemoProductID          = "00000000-0000-0000-0000-0000000000b1"
	DemoMaterialID         = "00000000-0000-0000-0000-0000000000c1"
)

// SeedDemo carga un juego mínimo de datos de referencia para STORE_DRIVER=memory:
// la unidad propia, el taller tercerizado, un modelo de guante y un lote de cuero.
func (s *Store) SeedDemo() {
	now := time.Now()
	s.AddLocation(&entity.Location{
		ID: DemoLocationOwnID, Name: "Unidad principal", Kind: entity.LocationKindOwnedFacility,
		Active: true, CreatedAt: now, UpdatedAt: now,
	})
	s.AddLocation(&entity.Location{
		ID: DemoLocationWorkshopID, Name: "Taller Víctor", Kind: entity.LocationKindThirdPartyWorkshop,
		Active: true, CreatedAt: now, UpdatedAt: now,
	})
	s.AddProduct(&entity.Product{
		ID: DemoProductID, Name: "Guante de cuero clásico", Kind: "cuero", Size: "M",
		InternalCode: "GC-M-001", Unit: "pares", UnitCost: decimal.NewFromInt(18500),
		Active: true, CreatedAt: now, UpdatedAt: now,
	})
	s.AddMaterial(&entity.RawMaterial{
		ID: DemoMaterialID, Name: "Cuero vacuno", Unit: "m2", Batch: "CV-0001",
		Active: true, CreatedAt: now,
	})
}
