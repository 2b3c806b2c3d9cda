package invoicexml_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranza-api/internal/application/billing"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/infrastructure/invoicexml"
)

func sampleDoc() billing.InvoiceDocument {
	gen := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	periodID := "per-1"
	qty := 3
	return billing.InvoiceDocument{
		Invoice: &entity.Invoice{
			ID:              "inv-1",
			CustomerID:      "cust-1",
			ServicePeriodID: &periodID,
			Status:          entity.InvoiceGenerated,
			SubtotalAmount:  decimal.NewFromInt(1000),
			TaxAmount:       decimal.NewFromInt(160),
			TotalAmount:     decimal.NewFromInt(1160),
			Currency:        "MXN",
			InvoiceNumber:   "A-100",
			GeneratedDate:   &gen,
		},
		Customer: &entity.Customer{
			ID:             "cust-1",
			CommercialName: "Tienda Alfa",
			LegalName:      "Alfa SA de CV",
			RFC:            "AAA010101AAA",
			CFDIUsage:      "G03",
		},
		Period: &entity.ServicePeriod{
			ID:        periodID,
			StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			Origin:    entity.OriginPayment,
			Quantity:  &qty,
			PlanSnapshot: &entity.PlanSnapshot{
				Code: "PRO", Name: "Plan Pro",
			},
		},
		TaxRate: decimal.NewFromFloat(0.16),
	}
}

func TestExportInvoiceXML_Estructura(t *testing.T) {
	out, digest, err := invoicexml.NewExporter(2).ExportInvoiceXML(sampleDoc())
	require.NoError(t, err)
	assert.Len(t, digest, 64)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Factura", root.Tag)
	assert.Equal(t, invoicexml.Namespace, root.SelectAttrValue("xmlns", ""))
	assert.Equal(t, "A-100", root.SelectAttrValue("Folio", ""))
	assert.Equal(t, "GENERATED", root.SelectAttrValue("Estado", ""))
	assert.Equal(t, "2026-03-02", root.SelectAttrValue("Fecha", ""))

	rec := root.SelectElement("Receptor")
	require.NotNil(t, rec)
	assert.Equal(t, "AAA010101AAA", rec.SelectAttrValue("Rfc", ""))
	assert.Equal(t, "Alfa SA de CV", rec.SelectAttrValue("Nombre", ""))

	per := root.SelectElement("Periodo")
	require.NotNil(t, per)
	assert.Equal(t, "2026-03-01", per.SelectAttrValue("Inicio", ""))
	assert.Equal(t, "2026-03-31", per.SelectAttrValue("Fin", ""))

	con := root.SelectElement("Concepto")
	require.NotNil(t, con)
	assert.Equal(t, "Plan Pro", con.SelectAttrValue("Descripcion", ""))
	assert.Equal(t, "3", con.SelectAttrValue("Cantidad", ""))
	assert.Equal(t, "1000.00", con.SelectAttrValue("Importe", ""))

	tras := root.FindElement("./Impuestos/Traslado")
	require.NotNil(t, tras)
	assert.Equal(t, "0.160000", tras.SelectAttrValue("Tasa", ""))
	assert.Equal(t, "160.00", tras.SelectAttrValue("Importe", ""))

	tot := root.SelectElement("Totales")
	require.NotNil(t, tot)
	assert.Equal(t, "1160.00", tot.SelectAttrValue("Total", ""))
	assert.Nil(t, root.SelectElement("Pago"))
}

func TestExportInvoiceXML_DigestNoDependeDeIndentacion(t *testing.T) {
	_, d1, err := invoicexml.NewExporter(0).ExportInvoiceXML(sampleDoc())
	require.NoError(t, err)
	_, d2, err := invoicexml.NewExporter(4).ExportInvoiceXML(sampleDoc())
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestExportInvoiceXML_DigestCambiaConElTotal(t *testing.T) {
	doc := sampleDoc()
	_, d1, err := invoicexml.NewExporter(2).ExportInvoiceXML(doc)
	require.NoError(t, err)

	doc.Invoice.TotalAmount = decimal.NewFromInt(1161)
	_, d2, err := invoicexml.NewExporter(2).ExportInvoiceXML(doc)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}

func TestExportInvoiceXML_SinPeriodoYPagada(t *testing.T) {
	doc := sampleDoc()
	doc.Period = nil
	paid := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	payID := "pay-1"
	doc.Invoice.Status = entity.InvoicePaid
	doc.Invoice.PaidDate = &paid
	doc.Invoice.PaidByPaymentID = &payID

	out, _, err := invoicexml.NewExporter(2).ExportInvoiceXML(doc)
	require.NoError(t, err)

	tree := etree.NewDocument()
	require.NoError(t, tree.ReadFromBytes(out))
	root := tree.Root()
	assert.Nil(t, root.SelectElement("Periodo"))
	assert.Equal(t, "Servicio de suscripción", root.SelectElement("Concepto").SelectAttrValue("Descripcion", ""))

	pago := root.SelectElement("Pago")
	require.NotNil(t, pago)
	assert.Equal(t, "2026-03-05", pago.SelectAttrValue("Fecha", ""))
	assert.Equal(t, "pay-1", pago.SelectAttrValue("PagoId", ""))
}

func TestExportInvoiceXML_RequiereFacturaYCliente(t *testing.T) {
	_, _, err := invoicexml.NewExporter(2).ExportInvoiceXML(billing.InvoiceDocument{})
	assert.Error(t, err)
}

func TestDigest_XMLInvalido(t *testing.T) {
	_, err := invoicexml.Digest([]byte("<a><b></a>"))
	assert.Error(t, err)
}
