package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

var (
	_ repository.LotRepository           = (*LotRepo)(nil)
	_ repository.LotHistoryRepository    = (*LotHistoryRepo)(nil)
	_ repository.MoveRequestRepository   = (*MoveRequestRepo)(nil)
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.LocationRepository      = (*LocationRepo)(nil)
	_ repository.RawMaterialRepository   = (*RawMaterialRepo)(nil)
)

// ── Lotes ─────────────────────────────────────────────────────────────────────

// LotRepo implementa repository.LotRepository.
type LotRepo struct{ h handle }

// Create inserta el lote; un ID repetido es conflicto.
func (r *LotRepo) Create(ctx context.Context, lot *entity.ProductionLot) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.lots[lot.ID]; ok {
			return fmt.Errorf("%w: lote %s ya existe", domain.ErrConflict, lot.ID)
		}
		st.lots[lot.ID] = lot.Clone()
		st.lotOrder = append(st.lotOrder, lot.ID)
		return nil
	})
}

// GetByID devuelve una copia del lote o (nil, nil) si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.ProductionLot, error) {
	var out *entity.ProductionLot
	err := r.h.read(ctx, func(st *state) {
		out = st.lots[id].Clone()
	})
	return out, err
}

// Update aplica CAS sobre la versión.
func (r *LotRepo) Update(ctx context.Context, lot *entity.ProductionLot, expectedVersion int) error {
	return r.h.write(ctx, func(st *state) error {
		stored, ok := st.lots[lot.ID]
		if !ok || stored.Version != expectedVersion {
			return domain.ErrVersionConflict
		}
		lot.Version = expectedVersion + 1
		st.lots[lot.ID] = lot.Clone()
		return nil
	})
}

// ListActive devuelve los lotes no finalizados, más recientes primero.
func (r *LotRepo) ListActive(ctx context.Context, filter repository.LotFilter) ([]*entity.ProductionLot, error) {
	var out []*entity.ProductionLot
	err := r.h.read(ctx, func(st *state) {
		for i := len(st.lotOrder) - 1; i >= 0; i-- {
			l := st.lots[st.lotOrder[i]]
			if l == nil || l.Finished() {
				continue
			}
			if filter.Stage != "" && l.Stage != filter.Stage {
				continue
			}
			if filter.LocationID != "" && l.CurrentLocationID != filter.LocationID {
				continue
			}
			if filter.ProductID != "" && l.ProductID != filter.ProductID {
				continue
			}
			out = append(out, l.Clone())
		}
	})
	if err != nil {
		return nil, err
	}
	// Orden de inserción invertido ya es "más recientes primero"; se estabiliza por fecha de inicio
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

// ListByParent devuelve los lotes nacidos de divisiones de parentID.
func (r *LotRepo) ListByParent(ctx context.Context, parentID string) ([]*entity.ProductionLot, error) {
	var out []*entity.ProductionLot
	err := r.h.read(ctx, func(st *state) {
		for _, id := range st.lotOrder {
			l := st.lots[id]
			if l != nil && l.ParentLotID != nil && *l.ParentLotID == parentID {
				out = append(out, l.Clone())
			}
		}
	})
	return out, err
}

// CountByStatus cuenta lotes por estado.
func (r *LotRepo) CountByStatus(ctx context.Context) ([]repository.LotStatusCount, error) {
	counts := map[string]int{}
	err := r.h.read(ctx, func(st *state) {
		for _, l := range st.lots {
			counts[l.Status]++
		}
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.LotStatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, repository.LotStatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

// ── Historial ─────────────────────────────────────────────────────────────────

// LotHistoryRepo implementa repository.LotHistoryRepository (solo inserción).
type LotHistoryRepo struct{ h handle }

func (r *LotHistoryRepo) Append(ctx context.Context, entry *entity.LotHistoryEntry) error {
	return r.h.write(ctx, func(st *state) error {
		e := *entry
		st.history = append(st.history, &e)
		return nil
	})
}

func (r *LotHistoryRepo) ListRecent(ctx context.Context, limit int) ([]*entity.LotHistoryEntry, error) {
	out := []*entity.LotHistoryEntry{}
	err := r.h.read(ctx, func(st *state) {
		for i := len(st.history) - 1; i >= 0 && len(out) < limit; i-- {
			e := *st.history[i]
			out = append(out, &e)
		}
	})
	return out, err
}

func (r *LotHistoryRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.LotHistoryEntry, error) {
	out := []*entity.LotHistoryEntry{}
	err := r.h.read(ctx, func(st *state) {
		for i := len(st.history) - 1; i >= 0; i-- {
			if st.history[i].LotID == lotID {
				e := *st.history[i]
				out = append(out, &e)
			}
		}
	})
	return out, err
}

// ── Idempotencia ──────────────────────────────────────────────────────────────

// MoveRequestRepo implementa repository.MoveRequestRepository.
type MoveRequestRepo struct{ h handle }

func (r *MoveRequestRepo) Get(ctx context.Context, key string) (*entity.MoveRequest, error) {
	var out *entity.MoveRequest
	err := r.h.read(ctx, func(st *state) {
		if req, ok := st.moveRequests[key]; ok {
			c := *req
			out = &c
		}
	})
	return out, err
}

// Create registra la clave. Una clave ya registrada se informa como conflicto de versión,
// igual que la violación de unicidad en postgres: el reintento relee y responde con lo guardado.
func (r *MoveRequestRepo) Create(ctx context.Context, req *entity.MoveRequest) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.moveRequests[req.Key]; ok {
			return domain.ErrVersionConflict
		}
		c := *req
		st.moveRequests[req.Key] = &c
		return nil
	})
}

// ── Stock ─────────────────────────────────────────────────────────────────────

// StockRepo implementa repository.StockRepository.
type StockRepo struct{ h handle }

func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.FinishedStock, error) {
	var out entity.FinishedStock
	err := r.h.read(ctx, func(st *state) {
		if s, ok := st.stock[productID]; ok {
			out = s
		} else {
			out = entity.FinishedStock{ProductID: productID}
		}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate no necesita bloqueo propio: las transacciones en memoria ya son serializadas.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.FinishedStock, error) {
	return r.Get(ctx, productID)
}

func (r *StockRepo) Upsert(ctx context.Context, stock *entity.FinishedStock) error {
	return r.h.write(ctx, func(st *state) error {
		st.stock[stock.ProductID] = *stock
		return nil
	})
}

// StockMovementRepo implementa repository.StockMovementRepository.
type StockMovementRepo struct{ h handle }

func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	return r.h.write(ctx, func(st *state) error {
		m := *movement
		st.movements = append(st.movements, &m)
		return nil
	})
}

func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.StockMovement, error) {
	out := []*entity.StockMovement{}
	err := r.h.read(ctx, func(st *state) {
		for i := len(st.movements) - 1; i >= 0 && len(out) < limit; i-- {
			if st.movements[i].ProductID == productID {
				m := *st.movements[i]
				out = append(out, &m)
			}
		}
	})
	return out, err
}

func (r *StockMovementRepo) FindByReference(ctx context.Context, referenceType, referenceID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.h.read(ctx, func(st *state) {
		for _, m := range st.movements {
			if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
				c := *m
				out = &c
				return
			}
		}
	})
	return out, err
}

// ── Datos de referencia ───────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ store *Store }

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.refMu.RLock()
	defer r.store.refMu.RUnlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// LocationRepo implementa repository.LocationRepository.
type LocationRepo struct{ store *Store }

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.refMu.RLock()
	defer r.store.refMu.RUnlock()
	l, ok := r.store.locations[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

// ListActive devuelve los locales activos ordenados por nombre.
func (r *LocationRepo) ListActive(ctx context.Context) ([]*entity.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.refMu.RLock()
	defer r.store.refMu.RUnlock()
	out := make([]*entity.Location, 0, len(r.store.locations))
	for _, l := range r.store.locations {
		if l.Active {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// RawMaterialRepo implementa repository.RawMaterialRepository.
type RawMaterialRepo struct{ store *Store }

func (r *RawMaterialRepo) GetByID(ctx context.Context, id string) (*entity.RawMaterial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.refMu.RLock()
	defer r.store.refMu.RUnlock()
	m, ok := r.store.materials[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}
