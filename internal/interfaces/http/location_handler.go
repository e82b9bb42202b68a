package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produccion-api/internal/application/tracking"
	"github.com/jhoicas/produccion-api/pkg/logger"
)

// LocationHandler expone los locales de producción activos.
type LocationHandler struct {
	tracker *tracking.Tracker
	log     *logger.Logger
}

// NewLocationHandler construye el handler.
func NewLocationHandler(tracker *tracking.Tracker, log *logger.Logger) *LocationHandler {
	return &LocationHandler{tracker: tracker, log: log}
}

// List godoc
// @Summary      Listar locales activos
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LocationResponse
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	out, err := h.tracker.ListLocations(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "no se pudieron listar los locales", err)
	}
	return c.JSON(out)
}
