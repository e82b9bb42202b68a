package repository

import (
	"context"

	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

// LotFilter filtros opcionales para listar lotes activos (vacío = sin filtro).
type LotFilter struct {
	Stage      string
	LocationID string
	ProductID  string
}

// LotStatusCount cantidad de lotes por estado.
type LotStatusCount struct {
	Status string
	Count  int
}

// LotRepository define el puerto de persistencia para lotes de producción.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.ProductionLot) error
	GetByID(ctx context.Context, id string) (*entity.ProductionLot, error)
	// Update persiste el lote solo si la versión almacenada es expectedVersion
	// e incrementa lot.Version. Devuelve domain.ErrVersionConflict si otra sesión lo cambió.
	Update(ctx context.Context, lot *entity.ProductionLot, expectedVersion int) error
	ListActive(ctx context.Context, filter LotFilter) ([]*entity.ProductionLot, error)
	ListByParent(ctx context.Context, parentID string) ([]*entity.ProductionLot, error)
	CountByStatus(ctx context.Context) ([]LotStatusCount, error)
}

// LotHistoryRepository define el puerto del historial (solo inserción y lectura).
type LotHistoryRepository interface {
	Append(ctx context.Context, entry *entity.LotHistoryEntry) error
	ListRecent(ctx context.Context, limit int) ([]*entity.LotHistoryEntry, error)
	ListByLot(ctx context.Context, lotID string) ([]*entity.LotHistoryEntry, error)
}

// MoveRequestRepository guarda los resultados de movimientos con clave de idempotencia.
type MoveRequestRepository interface {
	Get(ctx context.Context, key string) (*entity.MoveRequest, error)
	Create(ctx context.Context, req *entity.MoveRequest) error
}
