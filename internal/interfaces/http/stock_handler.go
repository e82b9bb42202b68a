package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	appinventory "github.com/jhoicas/produccion-api/internal/application/inventory"
	"github.com/jhoicas/produccion-api/pkg/logger"
)

// StockHandler consultas de stock de producto terminado.
type StockHandler struct {
	svc *appinventory.StockService
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(svc *appinventory.StockService, log *logger.Logger) *StockHandler {
	return &StockHandler{svc: svc, log: log}
}

// OnHand godoc
// @Summary      Stock disponible de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "Producto (UUID)"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id} [get]
func (h *StockHandler) OnHand(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	qty, err := h.svc.GetOnHand(c.UserContext(), productID)
	if err != nil {
		return respondError(c, h.log, "no se pudo consultar el stock", err)
	}
	return c.JSON(dto.StockResponse{ProductID: productID, OnHand: qty})
}

// Movements godoc
// @Summary      Movimientos de stock de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "Producto (UUID)"
// @Param        limit       query  int     false  "Máximo de registros (por defecto 100)"
// @Success      200  {array}  dto.StockMovementResponse
// @Router       /api/stock/{product_id}/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	list, err := h.svc.ListMovements(c.UserContext(), c.Params("product_id"), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, h.log, "no se pudieron listar los movimientos de stock", err)
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.StockMovementResponse{
			ID:               m.ID,
			Type:             m.Type,
			Quantity:         m.Quantity,
			PreviousQuantity: m.PreviousQuantity,
			NewQuantity:      m.NewQuantity,
			UnitCost:         m.UnitCost,
			TotalCost:        m.TotalCost,
			Reason:           m.Reason,
			ReferenceID:      m.ReferenceID,
			ReferenceType:    m.ReferenceType,
			CreatedAt:        m.CreatedAt,
		})
	}
	return c.JSON(out)
}
