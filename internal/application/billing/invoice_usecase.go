package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/repository"
)

// InvoiceUseCase facturas informativas: alta por periodo, marcado como generada/pagada,
// y descarga en PDF o XML.
type InvoiceUseCase struct {
	repos     Repos
	tx        TxRunner
	statusSvc *StatusService
	pdf       InvoicePDFGenerator
	xml       InvoiceXMLExporter
}

// NewInvoiceUseCase construye el caso de uso inyectando todas sus dependencias.
func NewInvoiceUseCase(repos Repos, tx TxRunner, statusSvc *StatusService, pdf InvoicePDFGenerator, xml InvoiceXMLExporter) *InvoiceUseCase {
	return &InvoiceUseCase{repos: repos, tx: tx, statusSvc: statusSvc, pdf: pdf, xml: xml}
}

// Create crea la factura PENDING de un periodo. El periodo no debe tener factura y debe
// tener al menos un pago; se vincula el primer pago del periodo que aún no tenga factura.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.ServicePeriodID == "" {
		return nil, fmt.Errorf("%w: service_period_id es obligatorio", domain.ErrInvalidInput)
	}
	existing, err := uc.repos.Periods.GetByID(ctx, in.ServicePeriodID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	taxRate := uc.statusSvc.Settings().TaxRate
	var inv *entity.Invoice
	err = uc.tx.Run(ctx, existing.CustomerID, func(r Repos) error {
		p, err := r.Periods.GetByID(ctx, in.ServicePeriodID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		current, err := r.Invoices.GetByPeriod(ctx, p.ID)
		if err != nil {
			return err
		}
		if current != nil {
			return domain.ErrInvoiceExists
		}
		payments, err := r.Payments.ListByPeriod(ctx, p.ID)
		if err != nil {
			return err
		}
		if len(payments) == 0 {
			return domain.ErrPeriodWithoutPayment
		}

		inv = newPendingInvoice(p, taxRate, uc.statusSvc.Now())
		inv.Notes = in.Notes
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		for _, pay := range payments {
			if pay.InvoiceID == nil {
				return r.Payments.SetInvoice(ctx, pay.ID, inv.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := toInvoiceResponse(inv)
	return &out, nil
}

// MarkGenerated registra número y URL de la factura emitida y pasa el periodo a INVOICED.
// Para clientes sin factura obligatoria puede vincular un pago (mismo cliente, sin otra factura).
func (uc *InvoiceUseCase) MarkGenerated(ctx context.Context, id string, in dto.MarkGeneratedRequest) (*dto.InvoiceResponse, error) {
	number := strings.TrimSpace(in.InvoiceNumber)
	if number == "" {
		return nil, fmt.Errorf("%w: invoice_number es obligatorio", domain.ErrInvalidInput)
	}
	existing, err := uc.getInvoice(ctx, uc.repos, id)
	if err != nil {
		return nil, err
	}

	var inv *entity.Invoice
	err = uc.tx.Run(ctx, existing.CustomerID, func(r Repos) error {
		inv, err = uc.getInvoice(ctx, r, id)
		if err != nil {
			return err
		}
		if inv.Status == entity.InvoicePaid {
			return fmt.Errorf("%w: la factura ya está pagada", domain.ErrConflict)
		}
		customer, err := r.Customers.GetByID(ctx, inv.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrNotFound
		}

		if in.PaymentID != "" && !customer.InvoiceRequired {
			pay, err := uc.checkPayment(ctx, r, inv, in.PaymentID)
			if err != nil {
				return err
			}
			if pay.InvoiceID == nil {
				if err := r.Payments.SetInvoice(ctx, pay.ID, inv.ID); err != nil {
					return err
				}
			}
		}

		today := uc.statusSvc.Today()
		inv.Status = entity.InvoiceGenerated
		inv.InvoiceNumber = number
		inv.InvoiceURL = strings.TrimSpace(in.InvoiceURL)
		inv.GeneratedDate = &today
		inv.UpdatedAt = uc.statusSvc.Now()
		if err := r.Invoices.Update(ctx, inv); err != nil {
			return err
		}

		if inv.ServicePeriodID != nil {
			p, err := r.Periods.GetByID(ctx, *inv.ServicePeriodID)
			if err != nil {
				return err
			}
			if p != nil && p.BillingStatus != entity.BillingInvoiced {
				p.BillingStatus = entity.BillingInvoiced
				p.UpdatedAt = uc.statusSvc.Now()
				if err := r.Periods.Update(ctx, p); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := toInvoiceResponse(inv)
	return &out, nil
}

// MarkPaid marca la factura como pagada por un pago del mismo cliente.
func (uc *InvoiceUseCase) MarkPaid(ctx context.Context, id string, in dto.MarkPaidRequest) (*dto.InvoiceResponse, error) {
	if in.PaymentID == "" {
		return nil, fmt.Errorf("%w: payment_id es obligatorio", domain.ErrInvalidInput)
	}
	existing, err := uc.getInvoice(ctx, uc.repos, id)
	if err != nil {
		return nil, err
	}

	var inv *entity.Invoice
	err = uc.tx.Run(ctx, existing.CustomerID, func(r Repos) error {
		inv, err = uc.getInvoice(ctx, r, id)
		if err != nil {
			return err
		}
		pay, err := uc.checkPayment(ctx, r, inv, in.PaymentID)
		if err != nil {
			return err
		}
		if pay.InvoiceID == nil {
			if err := r.Payments.SetInvoice(ctx, pay.ID, inv.ID); err != nil {
				return err
			}
		}
		today := uc.statusSvc.Today()
		payID := pay.ID
		inv.Status = entity.InvoicePaid
		inv.PaidDate = &today
		inv.PaidByPaymentID = &payID
		inv.UpdatedAt = uc.statusSvc.Now()
		return r.Invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	out := toInvoiceResponse(inv)
	return &out, nil
}

// checkPayment el pago debe existir, ser del cliente de la factura y no estar en otra factura.
func (uc *InvoiceUseCase) checkPayment(ctx context.Context, r Repos, inv *entity.Invoice, paymentID string) (*entity.Payment, error) {
	pay, err := r.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, fmt.Errorf("%w: pago %s", domain.ErrNotFound, paymentID)
	}
	if pay.CustomerID != inv.CustomerID {
		return nil, fmt.Errorf("%w: el pago es de otro cliente", domain.ErrInvalidInput)
	}
	if pay.InvoiceID != nil && *pay.InvoiceID != inv.ID {
		return nil, domain.ErrPaymentAlreadyInvoiced
	}
	return pay, nil
}

// List lista facturas por cliente y/o estado.
func (uc *InvoiceUseCase) List(ctx context.Context, q dto.InvoiceListQuery) ([]dto.InvoiceResponse, error) {
	filter := repository.InvoiceFilter{CustomerID: q.CustomerID}
	if q.Status != "" {
		s := entity.InvoiceStatus(q.Status)
		if !s.Valid() {
			return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, q.Status)
		}
		filter.Status = &s
	}
	list, err := uc.repos.Invoices.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		r := toInvoiceResponse(inv)
		name, ok := names[inv.CustomerID]
		if !ok {
			if c, err := uc.repos.Customers.GetByID(ctx, inv.CustomerID); err == nil && c != nil {
				name = c.CommercialName
			}
			names[inv.CustomerID] = name
		}
		r.CustomerName = name
		out = append(out, r)
	}
	return out, nil
}

// DownloadPDF genera la representación PDF de la factura.
func (uc *InvoiceUseCase) DownloadPDF(ctx context.Context, id string) ([]byte, string, error) {
	doc, err := uc.loadDocument(ctx, id)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.pdf.GenerateInvoicePDF(ctx, *doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return b, fmt.Sprintf("factura_%s.pdf", documentName(doc.Invoice)), nil
}

// DownloadXML exporta la factura como XML; devuelve también el digest de su forma canónica.
func (uc *InvoiceUseCase) DownloadXML(ctx context.Context, id string) ([]byte, string, string, error) {
	doc, err := uc.loadDocument(ctx, id)
	if err != nil {
		return nil, "", "", err
	}
	b, digest, err := uc.xml.ExportInvoiceXML(*doc)
	if err != nil {
		return nil, "", "", fmt.Errorf("xml: exportación fallida: %w", err)
	}
	return b, fmt.Sprintf("factura_%s.xml", documentName(doc.Invoice)), digest, nil
}

func (uc *InvoiceUseCase) loadDocument(ctx context.Context, id string) (*InvoiceDocument, error) {
	inv, err := uc.getInvoice(ctx, uc.repos, id)
	if err != nil {
		return nil, err
	}
	customer, err := uc.repos.Customers.GetByID(ctx, inv.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	doc := &InvoiceDocument{Invoice: inv, Customer: customer, TaxRate: uc.statusSvc.Settings().TaxRate}
	if inv.ServicePeriodID != nil {
		p, err := uc.repos.Periods.GetByID(ctx, *inv.ServicePeriodID)
		if err != nil {
			return nil, fmt.Errorf("obtener periodo: %w", err)
		}
		doc.Period = p
	}
	return doc, nil
}

func (uc *InvoiceUseCase) getInvoice(ctx context.Context, r Repos, id string) (*entity.Invoice, error) {
	inv, err := r.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func documentName(inv *entity.Invoice) string {
	if inv.InvoiceNumber != "" {
		return inv.InvoiceNumber
	}
	return strings.SplitN(inv.ID, "-", 2)[0]
}
