// Package invoicexml exporta facturas informativas como XML con un digest
// SHA-256 de su forma canónica (C14N 1.0), útil para conciliar con el CFDI real.
package invoicexml

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
)

// Namespace del documento exportado.
const Namespace = "urn:cobranza:factura:1"

const dateLayout = "2006-01-02"

var _ billing.InvoiceXMLExporter = (*Exporter)(nil)

// Exporter implementa billing.InvoiceXMLExporter con etree.
type Exporter struct {
	indent int
}

// NewExporter construye el exportador; indent 0 produce XML compacto.
func NewExporter(indent int) *Exporter {
	return &Exporter{indent: indent}
}

// ExportInvoiceXML arma el documento y devuelve sus bytes junto con el digest hex
// de la forma canónica (independiente de la indentación).
func (e *Exporter) ExportInvoiceXML(doc billing.InvoiceDocument) ([]byte, string, error) {
	if doc.Invoice == nil || doc.Customer == nil {
		return nil, "", fmt.Errorf("xml: factura y cliente son obligatorios")
	}
	tree := build(doc)
	tree.Indent(e.indent)
	out, err := tree.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xml: serializar: %w", err)
	}

	// El digest se calcula sobre el elemento raíz compacto para que no dependa del formato.
	compact := etree.NewDocument()
	compact.SetRoot(tree.Root().Copy())
	compact.Indent(etree.NoIndent)
	raw, err := compact.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xml: serializar: %w", err)
	}
	digest, err := Digest(raw)
	if err != nil {
		return nil, "", err
	}
	return out, digest, nil
}

// Digest SHA-256 hex del XML canonicalizado.
func Digest(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("xml: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func build(doc billing.InvoiceDocument) *etree.Document {
	inv, c := doc.Invoice, doc.Customer

	tree := etree.NewDocument()
	tree.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := tree.CreateElement("Factura")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("Version", "1.0")
	root.CreateAttr("Id", inv.ID)
	if inv.InvoiceNumber != "" {
		root.CreateAttr("Folio", inv.InvoiceNumber)
	}
	root.CreateAttr("Estado", string(inv.Status))
	if inv.GeneratedDate != nil {
		root.CreateAttr("Fecha", inv.GeneratedDate.Format(dateLayout))
	}

	rec := root.CreateElement("Receptor")
	rec.CreateAttr("Rfc", c.RFC)
	rec.CreateAttr("Nombre", firstNonEmpty(c.LegalName, c.CommercialName))
	if c.FiscalRegime != "" {
		rec.CreateAttr("RegimenFiscal", c.FiscalRegime)
	}
	if c.CFDIUsage != "" {
		rec.CreateAttr("UsoCFDI", c.CFDIUsage)
	}
	if c.BillingEmail != "" {
		rec.CreateAttr("Email", c.BillingEmail)
	}

	desc, qty, planCode := "Servicio de suscripción", 1, ""
	if p := doc.Period; p != nil {
		per := root.CreateElement("Periodo")
		per.CreateAttr("Inicio", p.StartDate.Format(dateLayout))
		per.CreateAttr("Fin", p.EndDate.Format(dateLayout))
		per.CreateAttr("Origen", string(p.Origin))
		if p.PlanSnapshot != nil {
			desc, planCode = p.PlanSnapshot.Name, p.PlanSnapshot.Code
		}
		if p.Quantity != nil {
			qty = *p.Quantity
		}
	}

	concepto := root.CreateElement("Concepto")
	concepto.CreateAttr("Descripcion", desc)
	if planCode != "" {
		concepto.CreateAttr("Plan", planCode)
	}
	concepto.CreateAttr("Cantidad", strconv.Itoa(qty))
	concepto.CreateAttr("Importe", inv.SubtotalAmount.StringFixed(2))

	imp := root.CreateElement("Impuestos")
	tras := imp.CreateElement("Traslado")
	tras.CreateAttr("Impuesto", "IVA")
	tras.CreateAttr("Tasa", doc.TaxRate.StringFixed(6))
	tras.CreateAttr("Importe", inv.TaxAmount.StringFixed(2))

	tot := root.CreateElement("Totales")
	tot.CreateAttr("Moneda", inv.Currency)
	tot.CreateAttr("SubTotal", inv.SubtotalAmount.StringFixed(2))
	tot.CreateAttr("Total", inv.TotalAmount.StringFixed(2))

	if inv.PaidDate != nil || inv.PaidByPaymentID != nil {
		pago := root.CreateElement("Pago")
		if inv.PaidDate != nil {
			pago.CreateAttr("Fecha", inv.PaidDate.Format(dateLayout))
		}
		if inv.PaidByPaymentID != nil {
			pago.CreateAttr("PagoId", *inv.PaidByPaymentID)
		}
	}
	if inv.Notes != "" {
		root.CreateElement("Notas").SetText(inv.Notes)
	}
	return tree
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
