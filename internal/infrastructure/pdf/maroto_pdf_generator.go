// Package pdf genera la representación impresa de una factura informativa
// de servicio (no timbrada).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre comercial + RFC  │  Folio + Fecha + Estado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RECEPTOR: Razón social / régimen / uso CFDI / email         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Concepto | Periodo | Importe                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / IVA / TOTAL                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de referencia + leyenda                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const dateLayout = "02/01/2006"

// ── Generator ─────────────────────────────────────────────────────────────────

var _ billing.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	issuer string // nombre del emisor en el encabezado
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(issuer string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{issuer: issuer}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, doc billing.InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil || doc.Customer == nil {
		return nil, fmt.Errorf("pdf: factura y cliente son obligatorios")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura de servicio", true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.issuer, doc.Invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(receptorRow(doc.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(conceptRow(doc))

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y folio + fecha + estado (der).
func headerRow(issuer string, inv *entity.Invoice) core.Row {
	fecha := inv.CreatedAt.Format(dateLayout)
	if inv.GeneratedDate != nil {
		fecha = inv.GeneratedDate.Format(dateLayout)
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(issuer, "Cobranza"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Documento informativo sin validez fiscal", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA DE SERVICIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(inv.InvoiceNumber, "SIN FOLIO"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New(fmt.Sprintf("Fecha: %s   |   Estado: %s", fecha, inv.Status), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// receptorRow: datos fiscales del cliente.
func receptorRow(c *entity.Customer) core.Row {
	return row.New(20).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(c.LegalName, c.CommercialName), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("RFC: %s   |   Régimen: %s   |   Uso CFDI: %s",
				nonEmpty(c.RFC, "-"),
				nonEmpty(c.FiscalRegime, "-"),
				nonEmpty(c.CFDIUsage, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
			text.New("Email: "+nonEmpty(c.BillingEmail, "-"), props.Text{Size: 8, Top: 16, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Concepto", 6, align.Left),
		h("Periodo", 3, align.Center),
		h("Importe", 3, align.Right),
	)
}

// conceptRow: una sola línea, el servicio del periodo facturado.
func conceptRow(doc billing.InvoiceDocument) core.Row {
	concept := "Servicio de suscripción"
	span := "-"
	if p := doc.Period; p != nil {
		if p.PlanSnapshot != nil {
			concept = fmt.Sprintf("%s (%s)", p.PlanSnapshot.Name, p.PlanSnapshot.Code)
			if p.Quantity != nil && *p.Quantity > 1 {
				concept += fmt.Sprintf(" x %d", *p.Quantity)
			}
		}
		span = p.StartDate.Format(dateLayout) + " - " + p.EndDate.Format(dateLayout)
	}
	return row.New(7).Add(
		col.New(6).Add(text.New(concept, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
		col.New(3).Add(text.New(span, props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(3).Add(text.New(
			formatMoney(doc.Invoice.SubtotalAmount, doc.Invoice.Currency),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
	)
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(doc billing.InvoiceDocument) core.Row {
	inv := doc.Invoice
	label := func(s string, bold bool) core.Component {
		p := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2}
		if bold {
			p.Size, p.Color = 10, colorPrimary
		}
		return text.New(s, p)
	}
	value := func(s string, top float64, bold bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}
		if bold {
			p.Style, p.Size, p.Color = fontstyle.Bold, 10, colorPrimary
		}
		return text.New(s, p)
	}
	ivaLabel := "IVA (" + doc.TaxRate.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%):"

	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", false),
			text.New(ivaLabel, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 10, Color: colorPrimary}),
		),
		col.New(3).Add(
			value(formatMoney(inv.SubtotalAmount, inv.Currency), 0, false),
			value(formatMoney(inv.TaxAmount, inv.Currency), 5, false),
			value(formatMoney(inv.TotalAmount, inv.Currency), 10, true),
		),
	)
}

// footerRows: QR con los datos de referencia + leyenda.
func footerRows(doc billing.InvoiceDocument) []core.Row {
	inv := doc.Invoice
	ref := strings.Join([]string{
		"id=" + inv.ID,
		"rfc=" + doc.Customer.RFC,
		"tt=" + inv.TotalAmount.StringFixed(2),
	}, "&")

	rows := []core.Row{
		row.New(30).Add(
			col.New(3).Add(code.NewQr(ref, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Referencia: "+inv.ID, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
				text.New("Este documento no es un CFDI y no sustituye al comprobante fiscal.", props.Text{
					Style: fontstyle.Bold, Size: 9, Top: 12, Left: 3, Color: colorPrimary,
				}),
			),
		),
	}
	if inv.Notes != "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Notas: "+inv.Notes, props.Text{Size: 7, Color: colorGray, Top: 2}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con separador de miles y dos decimales.
// Ej: 1234567.5 MXN → "$1,234,567.50 MXN"
func formatMoney(d decimal.Decimal, currency string) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return strings.TrimSpace(sign + "$" + string(buf) + frac + " " + currency)
}
