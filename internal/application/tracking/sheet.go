package tracking

import (
	"context"
	"fmt"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/domain"
)

// LotSheet datos de la ficha imprimible de un lote: encabezado con el lote y su historial.
type LotSheet struct {
	Lot     dto.LotResponse
	History []dto.LotHistoryResponse
}

// DownloadLotSheet arma la ficha del lote y la entrega al generador.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si el lote no existe.
//   - domain.ErrTransient        si no hay generador configurado.
func (t *Tracker) DownloadLotSheet(ctx context.Context, lotID string) (pdfBytes []byte, filename string, err error) {
	if t.sheets == nil {
		return nil, "", fmt.Errorf("%w: generador de fichas no configurado", domain.ErrTransient)
	}

	// ── 1. Lote ───────────────────────────────────────────────────────────────
	lot, err := t.GetLot(ctx, lotID)
	if err != nil {
		return nil, "", err
	}

	// ── 2. Historial ──────────────────────────────────────────────────────────
	hist, err := t.ListLotHistory(ctx, lotID)
	if err != nil {
		return nil, "", err
	}

	// ── 3. PDF ────────────────────────────────────────────────────────────────
	pdfBytes, err = t.sheets.GenerateLotSheet(ctx, LotSheet{Lot: *lot, History: hist.Items})
	if err != nil {
		return nil, "", fmt.Errorf("ficha: generar pdf: %w", err)
	}
	return pdfBytes, "lote-" + shortID(lot.ID) + ".pdf", nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
