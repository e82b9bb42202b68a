package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLotRequest body para POST /api/lots.
type CreateLotRequest struct {
	ProductID        string `json:"product_id" validate:"required"`
	Quantity         int    `json:"quantity" validate:"required,min=1"`
	Stage            string `json:"stage,omitempty"`
	LocationID       string `json:"location_id" validate:"required"`
	SourceMaterialID string `json:"source_material_id,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// MoveLotRequest body para POST /api/lots/:id/moves.
// IdempotencyKey también puede enviarse en el header Idempotency-Key.
type MoveLotRequest struct {
	NewStage       string `json:"new_stage" validate:"required"`
	DestinationID  string `json:"destination_location_id" validate:"required"`
	Quantity       int    `json:"quantity" validate:"required,min=1"`
	Note           string `json:"note,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// FinalizeLotRequest body opcional para POST /api/lots/:id/finalize.
type FinalizeLotRequest struct {
	Note string `json:"note,omitempty"`
}

// CreateLotResponse salida de la creación.
type CreateLotResponse struct {
	ID string `json:"id"`
}

// MoveLotResponse salida de un movimiento o división.
type MoveLotResponse struct {
	MovedLotID     string  `json:"moved_lot_id"`
	RemainderLotID *string `json:"remainder_lot_id,omitempty"`
	Split          bool    `json:"split"`
	Replayed       bool    `json:"replayed"`
}

// StockAdjustmentResponse salida de la finalización / ajuste de stock.
type StockAdjustmentResponse struct {
	ProductID        string    `json:"product_id"`
	LotID            string    `json:"lot_id,omitempty"`
	Delta            int       `json:"delta"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	MovementID       string    `json:"movement_id"`
	At               time.Time `json:"at"`
}

// LotResponse salida de un lote, enriquecida con nombres de producto y local.
type LotResponse struct {
	ID                    string     `json:"id"`
	ProductID             string     `json:"product_id"`
	ProductName           string     `json:"product_name"`
	Unit                  string     `json:"unit"`
	Quantity              int        `json:"quantity"`
	Stage                 string     `json:"stage"`
	Status                string     `json:"status"`
	CurrentLocationID     string     `json:"current_location_id"`
	CurrentLocationName   string     `json:"current_location_name"`
	OriginLocationID      string     `json:"origin_location_id"`
	DestinationLocationID *string    `json:"destination_location_id,omitempty"`
	SourceMaterialID      *string    `json:"source_material_id,omitempty"`
	ParentLotID           *string    `json:"parent_lot_id,omitempty"`
	Notes                 string     `json:"notes,omitempty"`
	StartedAt             time.Time  `json:"started_at"`
	FinishedAt            *time.Time `json:"finished_at,omitempty"`
	Version               int        `json:"version"`
}

// LotListResponse lista de lotes activos.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Total int           `json:"total"`
}

// LotHistoryResponse salida de un registro de historial.
type LotHistoryResponse struct {
	ID                   string    `json:"id"`
	LotID                string    `json:"lot_id"`
	PreviousStage        *string   `json:"previous_stage,omitempty"`
	NewStage             string    `json:"new_stage"`
	PreviousLocationID   *string   `json:"previous_location_id,omitempty"`
	PreviousLocationName string    `json:"previous_location_name,omitempty"`
	NewLocationID        *string   `json:"new_location_id,omitempty"`
	NewLocationName      string    `json:"new_location_name,omitempty"`
	Quantity             int       `json:"quantity"`
	Note                 string    `json:"note,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	CreatedBy            string    `json:"created_by,omitempty"`
}

// LotHistoryListResponse lista del historial (más recientes primero).
type LotHistoryListResponse struct {
	Items []LotHistoryResponse `json:"items"`
	Limit int                  `json:"limit"`
}

// LotSummaryResponse tarjetas del tablero: lotes por estado.
type LotSummaryResponse struct {
	InProcess int `json:"in_process"`
	InTransit int `json:"in_transit"`
	Finished  int `json:"finished"`
}

// LocationResponse salida de un local de producción.
type LocationResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Address string `json:"address,omitempty"`
}

// StockResponse stock disponible de un producto.
type StockResponse struct {
	ProductID string `json:"product_id"`
	OnHand    int    `json:"on_hand"`
}

// StockMovementResponse salida de un movimiento de stock.
type StockMovementResponse struct {
	ID               string          `json:"id"`
	Type             string          `json:"type"`
	Quantity         int             `json:"quantity"`
	PreviousQuantity int             `json:"previous_quantity"`
	NewQuantity      int             `json:"new_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	Reason           string          `json:"reason,omitempty"`
	ReferenceID      string          `json:"reference_id,omitempty"`
	ReferenceType    string          `json:"reference_type,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
