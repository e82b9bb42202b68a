// Package pdf genera la ficha imprimible de un lote de producción.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + cantidad  │  Lote + fecha de inicio      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Etapa / Estado / Local actual / Origen              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Etapa | Local | Pares | Nota                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID del lote                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/application/tracking"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 120, Green: 60, Blue: 20}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ tracking.LotSheetGenerator = (*LotSheetGenerator)(nil)

// LotSheetGenerator implementa tracking.LotSheetGenerator con Maroto v2.
type LotSheetGenerator struct {
	workshop string
}

// NewLotSheetGenerator construye el generador; workshop aparece como autor del documento.
func NewLotSheetGenerator(workshop string) *LotSheetGenerator {
	return &LotSheetGenerator{workshop: workshop}
}

// GenerateLotSheet genera el PDF y devuelve sus bytes.
func (g *LotSheetGenerator) GenerateLotSheet(ctx context.Context, sheet tracking.LotSheet) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Ficha de lote "+sheet.Lot.ID, true).
		WithAuthor(nonEmpty(g.workshop, "Taller"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet.Lot))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(detailRow(sheet.Lot))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(historyHeaderRow())
	m.AddRows(historyRows(sheet.History)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(sheet.Lot))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(lot dto.LotResponse) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(lot.ProductName, lot.ProductID), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(strconv.Itoa(lot.Quantity)+" "+nonEmpty(lot.Unit, "pares"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FICHA DE LOTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(lot.ID, props.Text{
				Size: 7, Align: align.Right, Top: 7,
			}),
			text.New("Inicio: "+lot.StartedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func detailRow(lot dto.LotResponse) core.Row {
	info := fmt.Sprintf("Etapa: %s   |   Estado: %s   |   Local: %s",
		stageLabel(lot.Stage), statusLabel(lot.Status), nonEmpty(lot.CurrentLocationName, lot.CurrentLocationID))
	extra := "Origen: " + lot.OriginLocationID
	if lot.ParentLotID != nil {
		extra += "   |   Lote padre: " + *lot.ParentLotID
	}
	if lot.FinishedAt != nil {
		extra += "   |   Finalizado: " + lot.FinishedAt.Format("02/01/2006 15:04")
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("DATOS DEL LOTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(info, props.Text{Size: 8, Top: 6}),
			text.New(extra, props.Text{Size: 7, Top: 11, Color: colorGray}),
		),
	)
}

func historyHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Etapa", 2, align.Left),
		h("Local", 3, align.Left),
		h("Pares", 1, align.Right),
		h("Nota", 4, align.Left),
	)
}

func historyRows(history []dto.LotHistoryResponse) []core.Row {
	if len(history) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Sin movimientos registrados", props.Text{Size: 8, Top: 1, Color: colorGray}),
		))}
	}
	rows := make([]core.Row, 0, len(history))
	for _, h := range history {
		stage := stageLabel(h.NewStage)
		if h.PreviousStage != nil && *h.PreviousStage != h.NewStage {
			stage = stageLabel(*h.PreviousStage) + " > " + stage
		}
		rows = append(rows, row.New(7).Add(
			col.New(2).Add(text.New(h.CreatedAt.Format("02/01 15:04"), props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(2).Add(text.New(stage, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(3).Add(text.New(nonEmpty(h.NewLocationName, "-"), props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(1).Add(text.New(strconv.Itoa(h.Quantity), props.Text{Size: 7, Top: 1, Align: align.Right, Right: 1})),
			col.New(4).Add(text.New(h.Note, props.Text{Size: 7, Top: 1, Left: 1})),
		))
	}
	return rows
}

func footerRow(lot dto.LotResponse) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(lot.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Escanea el código para abrir el lote en el sistema.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(fmt.Sprintf("Versión %d", lot.Version), props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

func stageLabel(stage string) string {
	switch stage {
	case entity.StageCutting:
		return "Corte"
	case entity.StageSewing:
		return "Costura"
	case entity.StageReview:
		return "Revisión"
	case entity.StagePacking:
		return "Embalaje"
	case entity.StageFinished:
		return "Finalizado"
	}
	return stage
}

func statusLabel(status string) string {
	switch status {
	case entity.LotStatusInProcess:
		return "En proceso"
	case entity.LotStatusInTransit:
		return "En tránsito"
	case entity.LotStatusFinished:
		return "Finalizado"
	}
	return status
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
