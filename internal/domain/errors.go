package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrTransient    = errors.New("almacenamiento no disponible temporalmente")
)

// Variantes de conflicto. Ambas cumplen errors.Is(err, ErrConflict).
var (
	// ErrLotFinished es terminal: un lote finalizado no se mueve ni se finaliza de nuevo.
	ErrLotFinished = fmt.Errorf("%w: el lote ya está finalizado", ErrConflict)
	// ErrVersionConflict indica que otra sesión modificó el lote entre la lectura y la escritura.
	ErrVersionConflict = fmt.Errorf("%w: versión del lote desactualizada", ErrConflict)
	// ErrIdempotencyKeyReused indica una clave de idempotencia ya usada para otro lote.
	ErrIdempotencyKeyReused = fmt.Errorf("%w: clave de idempotencia usada por otro lote", ErrConflict)
)

// Retryable indica si el error admite reintento automático (conflicto de versión o fallo transitorio).
func Retryable(err error) bool {
	return errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrTransient)
}
