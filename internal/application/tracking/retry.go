package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/produccion-api/internal/domain"
)

// Config parámetros de reintento y timeout del rastreo.
type Config struct {
	MaxAttempts  int           // intentos totales ante conflicto de versión o fallo transitorio
	BaseBackoff  time.Duration // espera antes del segundo intento; se duplica en cada intento
	StoreTimeout time.Duration // timeout por intento contra el almacenamiento
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 50 * time.Millisecond
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
	return c
}

// withRetry ejecuta fn con timeout por intento. Reintenta solo errores reintentables
// (domain.Retryable) con backoff exponencial; validación, not found y lote finalizado son terminales.
func (t *Tracker) withRetry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= t.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, t.cfg.StoreTimeout)
		err = fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrTransient) {
			err = fmt.Errorf("%w: %v", domain.ErrTransient, err)
		}
		if !domain.Retryable(err) || attempt == t.cfg.MaxAttempts {
			return err
		}

		reason := "transient"
		if errors.Is(err, domain.ErrVersionConflict) {
			reason = "version_conflict"
		}
		t.metrics.ObserveRetry(operation, reason)
		t.log.Warn().Err(err).
			Str("operation", operation).
			Int("attempt", attempt).
			Str("reason", reason).
			Msg("reintentando operación de lote")

		wait := t.cfg.BaseBackoff << (attempt - 1)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
	}
	return err
}
