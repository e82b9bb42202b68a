package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/pkg/logger"
)

// respondError traduce errores de dominio a status + código. El mensaje nombra la operación
// fallida; el detalle interno solo va al log.
func respondError(c *fiber.Ctx, log *logger.Logger, failed string, err error) error {
	status, code := classify(err)
	ev := log.Warn()
	if status >= fiber.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("code", code).
		Msg(failed)

	msg := failed
	switch code {
	case "VALIDATION":
		// las reglas de validación son mensajes de dominio pensados para el usuario
		msg = failed + ": " + err.Error()
	case "LOT_FINISHED":
		msg = failed + ": el lote ya está finalizado"
	case "UNAVAILABLE":
		msg = failed + ": intente nuevamente"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrLotFinished):
		return fiber.StatusConflict, "LOT_FINISHED"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrTransient):
		return fiber.StatusServiceUnavailable, "UNAVAILABLE"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}
