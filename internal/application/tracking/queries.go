package tracking

import (
	"context"
	"fmt"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// Límites del historial: por defecto se muestran los 100 más recientes.
const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 500
)

// GetLot obtiene un lote por ID.
func (t *Tracker) GetLot(ctx context.Context, id string) (*dto.LotResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	lot, err := t.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	r := newResolver(t)
	out := r.lot(ctx, lot)
	return &out, nil
}

// ListActiveLots lista los lotes no finalizados (más recientes primero) con filtros opcionales.
func (t *Tracker) ListActiveLots(ctx context.Context, filter repository.LotFilter) (*dto.LotListResponse, error) {
	if filter.Stage != "" && !entity.ValidStage(filter.Stage) {
		return nil, fmt.Errorf("%w: etapa desconocida %q", domain.ErrInvalidInput, filter.Stage)
	}
	lots, err := t.lots.ListActive(ctx, filter)
	if err != nil {
		return nil, err
	}
	r := newResolver(t)
	items := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		items = append(items, r.lot(ctx, l))
	}
	return &dto.LotListResponse{Items: items, Total: len(items)}, nil
}

// ListHistory devuelve el historial global, más recientes primero.
// limit <= 0 usa DefaultHistoryLimit; se acota a MaxHistoryLimit.
func (t *Tracker) ListHistory(ctx context.Context, limit int) (*dto.LotHistoryListResponse, error) {
	limit = clampLimit(limit)
	entries, err := t.history.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	r := newResolver(t)
	return &dto.LotHistoryListResponse{Items: r.history(ctx, entries), Limit: limit}, nil
}

// ListLotHistory devuelve el historial de un lote, más recientes primero.
func (t *Tracker) ListLotHistory(ctx context.Context, lotID string) (*dto.LotHistoryListResponse, error) {
	lot, err := t.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, lotID)
	}
	entries, err := t.history.ListByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	r := newResolver(t)
	return &dto.LotHistoryListResponse{Items: r.history(ctx, entries), Limit: len(entries)}, nil
}

// Summary cuenta lotes por estado para las tarjetas del tablero.
func (t *Tracker) Summary(ctx context.Context) (*dto.LotSummaryResponse, error) {
	counts, err := t.lots.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.LotSummaryResponse{}
	for _, c := range counts {
		switch c.Status {
		case entity.LotStatusInProcess:
			out.InProcess = c.Count
		case entity.LotStatusInTransit:
			out.InTransit = c.Count
		case entity.LotStatusFinished:
			out.Finished = c.Count
		}
	}
	return out, nil
}

// ListLocations lista los locales activos (para elegir destino de un movimiento).
func (t *Tracker) ListLocations(ctx context.Context) ([]dto.LocationResponse, error) {
	list, err := t.locations.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.LocationResponse{ID: l.ID, Name: l.Name, Kind: l.Kind, Address: l.Address})
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// resolver resuelve nombres de producto y local con caché por consulta.
// Un error de búsqueda deja el nombre vacío: la consulta principal no falla por datos de referencia.
type resolver struct {
	t         *Tracker
	products  map[string]*entity.Product
	locations map[string]*entity.Location
}

func newResolver(t *Tracker) *resolver {
	return &resolver{
		t:         t,
		products:  make(map[string]*entity.Product),
		locations: make(map[string]*entity.Location),
	}
}

func (r *resolver) product(ctx context.Context, id string) *entity.Product {
	if p, ok := r.products[id]; ok {
		return p
	}
	p, _ := r.t.products.GetByID(ctx, id)
	r.products[id] = p
	return p
}

func (r *resolver) locationName(ctx context.Context, id *string) string {
	if id == nil || *id == "" {
		return ""
	}
	l, ok := r.locations[*id]
	if !ok {
		l, _ = r.t.locations.GetByID(ctx, *id)
		r.locations[*id] = l
	}
	if l == nil {
		return ""
	}
	return l.Name
}

func (r *resolver) lot(ctx context.Context, l *entity.ProductionLot) dto.LotResponse {
	out := dto.LotResponse{
		ID:                    l.ID,
		ProductID:             l.ProductID,
		Quantity:              l.Quantity,
		Stage:                 l.Stage,
		Status:                l.Status,
		CurrentLocationID:     l.CurrentLocationID,
		CurrentLocationName:   r.locationName(ctx, &l.CurrentLocationID),
		OriginLocationID:      l.OriginLocationID,
		DestinationLocationID: l.DestinationLocationID,
		SourceMaterialID:      l.SourceMaterialID,
		ParentLotID:           l.ParentLotID,
		Notes:                 l.Notes,
		StartedAt:             l.StartedAt,
		FinishedAt:            l.FinishedAt,
		Version:               l.Version,
	}
	if p := r.product(ctx, l.ProductID); p != nil {
		out.ProductName = p.Name
		out.Unit = p.Unit
	}
	return out
}

func (r *resolver) history(ctx context.Context, entries []*entity.LotHistoryEntry) []dto.LotHistoryResponse {
	out := make([]dto.LotHistoryResponse, 0, len(entries))
	for _, h := range entries {
		out = append(out, dto.LotHistoryResponse{
			ID:                   h.ID,
			LotID:                h.LotID,
			PreviousStage:        h.PreviousStage,
			NewStage:             h.NewStage,
			PreviousLocationID:   h.PreviousLocationID,
			PreviousLocationName: r.locationName(ctx, h.PreviousLocationID),
			NewLocationID:        h.NewLocationID,
			NewLocationName:      r.locationName(ctx, h.NewLocationID),
			Quantity:             h.Quantity,
			Note:                 h.Note,
			CreatedAt:            h.CreatedAt,
			CreatedBy:            h.CreatedBy,
		})
	}
	return out
}
