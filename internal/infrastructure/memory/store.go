// Package memory implementa los repositorios y las transacciones en memoria.
// Se usa con STORE_DRIVER=memory (demo local) y en los tests de casos de uso y handlers.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/produccion-api/internal/application/inventory"
	"github.com/jhoicas/produccion-api/internal/application/tracking"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// state es la parte transaccional: lotes, historial, stock, movimientos y claves de idempotencia.
type state struct {
	lots         map[string]*entity.ProductionLot
	lotOrder     []string // IDs en orden de inserción
	history      []*entity.LotHistoryEntry
	stock        map[string]entity.FinishedStock
	movements    []*entity.StockMovement
	moveRequests map[string]*entity.MoveRequest
}

func newState() *state {
	return &state{
		lots:         map[string]*entity.ProductionLot{},
		stock:        map[string]entity.FinishedStock{},
		moveRequests: map[string]*entity.MoveRequest{},
	}
}

// clone copia el estado para una transacción. Historial, movimientos y claves son inmutables,
// basta con copiar los slices y mapas; los lotes se clonan porque se actualizan.
func (s *state) clone() *state {
	c := &state{
		lots:         make(map[string]*entity.ProductionLot, len(s.lots)),
		lotOrder:     append([]string(nil), s.lotOrder...),
		history:      append([]*entity.LotHistoryEntry(nil), s.history...),
		stock:        make(map[string]entity.FinishedStock, len(s.stock)),
		movements:    append([]*entity.StockMovement(nil), s.movements...),
		moveRequests: make(map[string]*entity.MoveRequest, len(s.moveRequests)),
	}
	for k, v := range s.lots {
		c.lots[k] = v.Clone()
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.moveRequests {
		c.moveRequests[k] = v
	}
	return c
}

// Store guarda todo en memoria. Las transacciones trabajan sobre una copia del estado
// y la publican al confirmar; un error descarta la copia (rollback).
// Los datos de referencia tienen su propio lock: se leen desde dentro de una transacción.
type Store struct {
	refMu     sync.RWMutex
	products  map[string]*entity.Product
	locations map[string]*entity.Location
	materials map[string]*entity.RawMaterial

	txMu    sync.Mutex   // serializa escritores
	stateMu sync.RWMutex // protege el puntero state
	state   *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:  map[string]*entity.Product{},
		locations: map[string]*entity.Location{},
		materials: map[string]*entity.RawMaterial{},
		state:     newState(),
	}
}

var (
	_ tracking.TxRunner  = (*Store)(nil)
	_ inventory.TxRunner = (*Store)(nil)
)

// RunTracking ejecuta fn con repositorios atados a una copia del estado.
func (s *Store) RunTracking(ctx context.Context, fn func(repos tracking.TxRepos) error) error {
	return s.run(ctx, func(h handle) error {
		return fn(tracking.TxRepos{
			Lots:         &LotRepo{h: h},
			History:      &LotHistoryRepo{h: h},
			MoveRequests: &MoveRequestRepo{h: h},
			Stock:        &StockRepo{h: h},
			Movements:    &StockMovementRepo{h: h},
		})
	})
}

// RunStock ejecuta fn con los repositorios de stock atados a una copia del estado.
func (s *Store) RunStock(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return s.run(ctx, func(h handle) error {
		return fn(&StockRepo{h: h}, &StockMovementRepo{h: h})
	})
}

func (s *Store) run(ctx context.Context, fn func(h handle) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.stateMu.RLock()
	tx := s.state.clone()
	s.stateMu.RUnlock()

	if err := fn(handle{store: s, tx: tx}); err != nil {
		return err
	}
	// Un contexto vencido durante fn equivale a un commit fallido
	if err := ctx.Err(); err != nil {
		return err
	}
	s.stateMu.Lock()
	s.state = tx
	s.stateMu.Unlock()
	return nil
}

// Repositorios fuera de transacción (equivalentes a los atados al pool en postgres).

func (s *Store) Lots() *LotRepo { return &LotRepo{h: handle{store: s}} }
func (s *Store) History() *LotHistoryRepo { return &LotHistoryRepo{h: handle{store: s}} }
func (s *Store) MoveRequests() *MoveRequestRepo { return &MoveRequestRepo{h: handle{store: s}} }
func (s *Store) Stock() *StockRepo { return &StockRepo{h: handle{store: s}} }
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{h: handle{store: s}} }
func (s *Store) Products() *ProductRepo { return &ProductRepo{store: s} }
func (s *Store) Locations() *LocationRepo { return &LocationRepo{store: s} }
func (s *Store) Materials() *RawMaterialRepo { return &RawMaterialRepo{store: s} }

// handle da acceso al estado: la copia de la transacción si tx != nil; si no, el estado confirmado con locks.
type handle struct {
	store *Store
	tx    *state
}

func (h handle) read(ctx context.Context, fn func(st *state)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.tx != nil {
		fn(h.tx)
		return nil
	}
	h.store.stateMu.RLock()
	defer h.store.stateMu.RUnlock()
	fn(h.store.state)
	return nil
}

// write modifica el estado. Fuera de transacción toma txMu para no intercalarse con una en curso.
func (h handle) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.txMu.Lock()
	defer h.store.txMu.Unlock()
	h.store.stateMu.Lock()
	defer h.store.stateMu.Unlock()
	return fn(h.store.state)
}
