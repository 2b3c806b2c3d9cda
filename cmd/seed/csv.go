package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Cobranza-api/internal/application/dto"
)

// Columnas reconocidas en la cabecera (sin distinguir mayúsculas). commercial_name es obligatoria.
const (
	colCommercialName  = "commercial_name"
	colAlias           = "alias"
	colLegalName       = "legal_name"
	colRFC             = "rfc"
	colBillingEmail    = "billing_email"
	colBillingContact  = "billing_contact"
	colInvoiceRequired = "invoice_required"
	colNotes           = "notes"
)

// readCustomers decodifica un CSV Windows-1252 separado por ';' o ','.
// Las filas sin nombre comercial se descartan.
func readCustomers(r io.Reader) ([]dto.CreateCustomerRequest, error) {
	data, err := io.ReadAll(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decodificar Windows-1252: %w", err)
	}
	text := strings.TrimPrefix(string(data), "ï»¿") // BOM UTF-8 leído como 1252

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = detectSeparator(text)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cabecera: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx[colCommercialName]; !ok {
		return nil, fmt.Errorf("falta la columna %s", colCommercialName)
	}

	var out []dto.CreateCustomerRequest
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		name := get(colCommercialName)
		if name == "" {
			continue
		}
		out = append(out, dto.CreateCustomerRequest{
			CommercialName:  name,
			Alias:           get(colAlias),
			LegalName:       get(colLegalName),
			RFC:             strings.ToUpper(get(colRFC)),
			BillingEmail:    get(colBillingEmail),
			BillingContact:  get(colBillingContact),
			Notes:           get(colNotes),
			InvoiceRequired: parseYes(get(colInvoiceRequired)),
		})
	}
	return out, nil
}

func detectSeparator(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}

func parseYes(s string) bool {
	switch strings.ToLower(s) {
	case "1", "si", "sí", "s", "true", "yes", "x":
		return true
	}
	return false
}
