package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	appinventory "github.com/jhoicas/produccion-api/internal/application/inventory"
	"github.com/jhoicas/produccion-api/internal/application/tracking"
	"github.com/jhoicas/produccion-api/internal/domain/repository"
	"github.com/jhoicas/produccion-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional de MoveOrSplit; tiene prioridad sobre el campo del cuerpo.
const HeaderIdempotencyKey = "Idempotency-Key"

// LotHandler maneja las peticiones HTTP de lotes de producción (protegido, rol admin).
type LotHandler struct {
	tracker *tracking.Tracker
	log     *logger.Logger
}

// NewLotHandler construye el handler.
func NewLotHandler(tracker *tracking.Tracker, log *logger.Logger) *LotHandler {
	return &LotHandler{tracker: tracker, log: log}
}

// Create godoc
// @Summary      Crear lote de producción
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "product_id, quantity, location_id, stage (opcional, corte por defecto)"
// @Success      201   {object}  dto.CreateLotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	id, err := h.tracker.CreateLot(c.UserContext(), tracking.CreateLotInput{
		ProductID:        in.ProductID,
		Quantity:         in.Quantity,
		Stage:            in.Stage,
		LocationID:       in.LocationID,
		SourceMaterialID: in.SourceMaterialID,
		Notes:            in.Notes,
		UserID:           GetLogin(c),
	})
	if err != nil {
		return respondError(c, h.log, "no se pudo crear el lote de producción", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateLotResponse{ID: id})
}

// List godoc
// @Summary      Listar lotes activos
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        stage        query  string  false  "cutting | sewing | review | packing"
// @Param        location_id  query  string  false  "Local actual (UUID)"
// @Param        product_id   query  string  false  "Producto (UUID)"
// @Success      200  {object}  dto.LotListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	out, err := h.tracker.ListActiveLots(c.UserContext(), repository.LotFilter{
		Stage:      c.Query("stage"),
		LocationID: c.Query("location_id"),
		ProductID:  c.Query("product_id"),
	})
	if err != nil {
		return respondError(c, h.log, "no se pudieron listar los lotes", err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Lotes por estado
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LotSummaryResponse
// @Router       /api/lots/summary [get]
func (h *LotHandler) Summary(c *fiber.Ctx) error {
	out, err := h.tracker.Summary(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "no se pudo obtener el resumen de lotes", err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Lote (UUID)"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.tracker.GetLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "no se pudo obtener el lote", err)
	}
	return c.JSON(out)
}

// Move godoc
// @Summary      Mover o dividir un lote
// @Description  Mueve quantity pares a new_stage en el local destino. Si quantity es menor
//
//	a la cantidad del lote, el lote se divide y el resto queda en su lugar.
//
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string              true   "Lote (UUID)"
// @Param        Idempotency-Key  header  string              false  "Clave de idempotencia"
// @Param        body             body    dto.MoveLotRequest  true   "new_stage, destination_location_id, quantity"
// @Success      200  {object}  dto.MoveLotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/moves [post]
func (h *LotHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	key := c.Get(HeaderIdempotencyKey)
	if key == "" {
		key = in.IdempotencyKey
	}
	res, err := h.tracker.MoveOrSplit(c.UserContext(), tracking.MoveInput{
		LotID:          c.Params("id"),
		NewStage:       in.NewStage,
		DestinationID:  in.DestinationID,
		Quantity:       in.Quantity,
		Note:           in.Note,
		IdempotencyKey: key,
		UserID:         GetLogin(c),
	})
	if err != nil {
		return respondError(c, h.log, "no se pudo mover el lote de producción", err)
	}
	return c.JSON(dto.MoveLotResponse{
		MovedLotID:     res.MovedLotID,
		RemainderLotID: res.RemainderLotID,
		Split:          res.Split,
		Replayed:       res.Replayed,
	})
}

// Finalize godoc
// @Summary      Finalizar lote
// @Description  Marca el lote como finalizado y suma su cantidad al stock de producto terminado.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true   "Lote (UUID)"
// @Param        body  body  dto.FinalizeLotRequest  false  "note"
// @Success      200  {object}  dto.StockAdjustmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/finalize [post]
func (h *LotHandler) Finalize(c *fiber.Ctx) error {
	var in dto.FinalizeLotRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	adj, err := h.tracker.Finalize(c.UserContext(), tracking.FinalizeInput{
		LotID:  c.Params("id"),
		Note:   in.Note,
		UserID: GetLogin(c),
	})
	if err != nil {
		return respondError(c, h.log, "no se pudo finalizar el lote de producción", err)
	}
	return c.JSON(toAdjustmentResponse(adj))
}

// History godoc
// @Summary      Historial de un lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Lote (UUID)"
// @Success      200  {object}  dto.LotHistoryListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/history [get]
func (h *LotHandler) History(c *fiber.Ctx) error {
	out, err := h.tracker.ListLotHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "no se pudo obtener el historial del lote", err)
	}
	return c.JSON(out)
}

// Sheet godoc
// @Summary      Ficha PDF del lote
// @Tags         lots
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "Lote (UUID)"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/sheet [get]
func (h *LotHandler) Sheet(c *fiber.Ctx) error {
	pdf, filename, err := h.tracker.DownloadLotSheet(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "no se pudo generar la ficha del lote", err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

// RecentHistory godoc
// @Summary      Últimos movimientos de todos los lotes
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de registros (por defecto 100, tope 500)"
// @Success      200  {object}  dto.LotHistoryListResponse
// @Router       /api/lot-history [get]
func (h *LotHandler) RecentHistory(c *fiber.Ctx) error {
	out, err := h.tracker.ListHistory(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, h.log, "no se pudo obtener el historial", err)
	}
	return c.JSON(out)
}

func toAdjustmentResponse(a *appinventory.StockAdjustment) dto.StockAdjustmentResponse {
	return dto.StockAdjustmentResponse{
		ProductID:        a.ProductID,
		LotID:            a.LotID,
		Delta:            a.Delta,
		PreviousQuantity: a.PreviousQuantity,
		NewQuantity:      a.NewQuantity,
		MovementID:       a.MovementID,
		At:               a.At,
	}
}
