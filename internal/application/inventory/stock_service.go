package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/domain/inventory"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
)

// StockAdjustment resultado de un ajuste de stock de producto terminado.
type StockAdjustment struct {
	ProductID        string
	LotID            string
	Delta            int
	PreviousQuantity int
	NewQuantity      int
	MovementID       string
	At               time.Time
}

// AdjustmentRef describe la causa de un ajuste.
type AdjustmentRef struct {
	LotID  string // lote que origina el ajuste (vacío en ajustes manuales)
	UserID string
	Reason string
}

// StockService es el colaborador de inventario de producto terminado:
// consulta de disponible y ajustes con bloqueo de fila (SELECT FOR UPDATE) y registro de movimiento.
type StockService struct {
	txRunner    TxRunner
	stockRepo   repository.StockRepository
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewStockService construye el servicio.
func NewStockService(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) *StockService {
	return &StockService{
		txRunner:    txRunner,
		stockRepo:   stockRepo,
		movRepo:     movRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// GetOnHand devuelve el stock disponible del producto (0 si nunca tuvo entradas).
func (s *StockService) GetOnHand(ctx context.Context, productID string) (int, error) {
	if productID == "" {
		return 0, domain.ErrInvalidInput
	}
	stock, err := s.stockRepo.Get(ctx, productID)
	if err != nil {
		return 0, err
	}
	return stock.Quantity, nil
}

// AdjustOnHand aplica delta al stock del producto en su propia transacción y devuelve el ajuste.
func (s *StockService) AdjustOnHand(ctx context.Context, productID string, delta int, ref AdjustmentRef) (*StockAdjustment, error) {
	if productID == "" || delta == 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	var out *StockAdjustment
	err = s.txRunner.RunStock(ctx, func(stockRepo repository.StockRepository, movRepo repository.StockMovementRepository) error {
		adj, err := s.AdjustOnHandInTx(ctx, stockRepo, movRepo, product, delta, ref)
		if err != nil {
			return err
		}
		out = adj
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AdjustOnHandInTx ejecuta el ajuste usando los repositorios proporcionados (misma transacción del caller).
// Lo usa la finalización de lotes para que la entrada al stock se confirme junto con el cierre del lote.
func (s *StockService) AdjustOnHandInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	product *entity.Product,
	delta int,
	ref AdjustmentRef,
) (*StockAdjustment, error) {
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if delta == 0 {
		return nil, fmt.Errorf("%w: ajuste de stock en cero", domain.ErrInvalidInput)
	}
	// Bloquea la fila de stock para evitar condiciones de carrera entre finalizaciones
	stock, err := stockRepo.GetForUpdate(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	previous := stock.Quantity
	next, err := inventory.ApplyDelta(previous, delta)
	if err != nil {
		return nil, err
	}
	now := s.now()
	stock.Quantity = next
	stock.UpdatedAt = now
	if err := stockRepo.Upsert(ctx, stock); err != nil {
		return nil, err
	}

	movType, qty := entity.MovementTypeIn, delta
	if delta < 0 {
		movType, qty = entity.MovementTypeOut, -delta
	}
	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductID:        product.ID,
		Type:             movType,
		Quantity:         qty,
		PreviousQuantity: previous,
		NewQuantity:      next,
		UnitCost:         product.UnitCost,
		TotalCost:        inventory.Valuation(qty, product.UnitCost),
		Reason:           ref.Reason,
		CreatedAt:        now,
		CreatedBy:        ref.UserID,
	}
	if ref.LotID != "" {
		mov.ReferenceID = ref.LotID
		mov.ReferenceType = entity.ReferenceTypeProductionLot
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return &StockAdjustment{
		ProductID:        product.ID,
		LotID:            ref.LotID,
		Delta:            delta,
		PreviousQuantity: previous,
		NewQuantity:      next,
		MovementID:       mov.ID,
		At:               now,
	}, nil
}

// ListMovements lista los últimos movimientos de stock del producto (más recientes primero).
func (s *StockService) ListMovements(ctx context.Context, productID string, limit int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.movRepo.ListByProduct(ctx, productID, limit)
}
