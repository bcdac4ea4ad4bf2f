// Package pdf genera el comprobante de egreso imprimible.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + Nombre del hotel │ N° Comprobante + Fecha  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BENEFICIARIO: Nombre / Tipo / Teléfono                      │
//	│  DETALLE: Categoría / Medio de pago / Descripción            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Monto / Impuesto (%) / TOTAL                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ESTADO: Solicitado / Aprobado / Pagado o Rechazado/Anulado  │
//	│  FOOTER: QR con número + firmas                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

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

	"github.com/jhoicas/Vouchers-api/internal/application/vouchers"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/pkg/labels"
)

var _ vouchers.PDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

// MarotoPDFGenerator implementa vouchers.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	issuer string // nombre del hotel en el encabezado
}

func NewMarotoPDFGenerator(issuer string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{issuer: issuer}
}

// GenerateVoucherPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateVoucherPDF(v *entity.Voucher) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de egreso "+v.VoucherNumber, true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(v, g.issuer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(beneficiaryRow(v))
	m.AddRows(detailRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(trailRows(v)...)
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(v))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(v *entity.Voucher, issuer string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("COMPROBANTE DE EGRESO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(issuer, "-"), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(v.VoucherNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+v.VoucherDate.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Estado: "+labels.Status(v.Status), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 13, Color: statusColor(v.Status),
			}),
		),
	)
}

func beneficiaryRow(v *entity.Voucher) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("BENEFICIARIO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(v.BeneficiaryName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Tipo: %s   |   Tel: %s",
				labels.BeneficiaryType(v.BeneficiaryType),
				nonEmpty(v.BeneficiaryPhone, "-"),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func detailRow(v *entity.Voucher) core.Row {
	return row.New(20).Add(
		col.New(12).Add(
			text.New("CONCEPTO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(v.Title, "-"), props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
			text.New(fmt.Sprintf("Categoría: %s   |   Medio de pago: %s",
				labels.Category(v.Category),
				labels.PaymentMethod(v.PaymentMethod),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
			text.New(v.Description, props.Text{Size: 8, Top: 15, Color: colorGray}),
		),
	)
}

func totalsRow(v *entity.Voucher) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string, a align.Type, right float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: a, Color: colorPrimary, Right: right, Top: 12,
		})
	}

	return row.New(20).Add(
		col.New(4),
		col.New(4).Add(
			label("Monto:"),
			text.New(fmt.Sprintf("Impuesto (%s%%):", v.TaxPercentage.String()), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6,
			}),
			grand("TOTAL:", align.Right, 2),
		),
		col.New(4).Add(
			value(labels.FormatAmount(v.Amount, v.Currency)),
			text.New(labels.FormatAmount(v.TaxAmount, v.Currency), props.Text{
				Size: 9, Align: align.Right, Right: 1, Top: 6,
			}),
			grand(labels.FormatAmount(v.TotalAmount, v.Currency), align.Right, 1),
		),
	)
}

// trailRows una fila por cada paso registrado: solicitud y evento de cierre.
func trailRows(v *entity.Voucher) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("TRAZABILIDAD", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
		trailRow("Solicitado por", actorName(v.RequestedBy, v.RequestedByName), v.CreatedAt, ""),
	}
	if a, ok := v.Approval(); ok {
		rows = append(rows, trailRow("Aprobado por", actorName(a.By, a.ByName), a.At, a.Notes))
	}
	switch ev := v.Closing.(type) {
	case entity.Payment:
		rows = append(rows, trailRow("Pagado por", actorName(ev.By, ev.ByName), ev.At, joinNonEmpty(ev.Reference, ev.Notes)))
	case entity.Rejection:
		rows = append(rows, trailRow("Rechazado por", actorName(ev.By, ev.ByName), ev.At, ev.Reason))
	case entity.Cancellation:
		rows = append(rows, trailRow("Anulado por", actorName(ev.By, ev.ByName), ev.At, ev.Reason))
	}
	return rows
}

func trailRow(step, who string, at time.Time, note string) core.Row {
	return row.New(6).Add(
		col.New(3).Add(text.New(step+":", props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
		col.New(4).Add(text.New(who, props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(at.Format(dateTimeLayout), props.Text{Size: 8, Top: 1, Color: colorGray})),
		col.New(3).Add(text.New(note, props.Text{Size: 7, Top: 1, Color: colorGray})),
	)
}

func footerRow(v *entity.Voucher) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(v.VoucherNumber+"|"+v.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("______________________          ______________________", props.Text{
				Size: 9, Top: 18, Left: 3, Color: colorGray,
			}),
			text.New("Firma beneficiario                         Firma autorizada", props.Text{
				Size: 8, Top: 23, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusColor(s entity.VoucherStatus) *props.Color {
	if s == entity.StatusRejected || s == entity.StatusCancelled {
		return colorDanger
	}
	return colorPrimary
}

func actorName(id, name string) string {
	return nonEmpty(name, id)
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " - " + b
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
