package billing

import (
	"github.com/jhoicas/Cobranza-api/internal/application/dto"
	"github.com/jhoicas/Cobranza-api/internal/domain/entity"
	"github.com/jhoicas/Cobranza-api/internal/domain/status"
)

func toCustomerResponse(c *entity.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:                 c.ID,
		CommercialName:     c.CommercialName,
		Alias:              c.Alias,
		AdminContact:       c.AdminContact,
		BillingContact:     c.BillingContact,
		Notes:              c.Notes,
		LegalName:          c.LegalName,
		RFC:                c.RFC,
		FiscalRegime:       c.FiscalRegime,
		CFDIUsage:          c.CFDIUsage,
		BillingEmail:       c.BillingEmail,
		InvoiceRequired:    c.InvoiceRequired,
		OperationalStatus:  string(c.OperationalStatus),
		RelationshipStatus: string(c.RelationshipStatus),
	}
}

// ToStatusResponse convierte un snapshot al DTO.
func ToStatusResponse(s status.Snapshot) dto.StatusResponse {
	return dto.StatusResponse{
		FinancialStatus:    string(s.Financial),
		OperationalStatus:  string(s.Operational),
		RelationshipStatus: string(s.Relationship),
		DaysOverdue:        s.DaysOverdue,
		NextPaymentDue:     dto.FormatDatePtr(s.NextPaymentDue),
	}
}

func toAgreementResponse(a *entity.CommercialAgreement) dto.AgreementResponse {
	return dto.AgreementResponse{
		ID:              a.ID,
		CustomerID:      a.CustomerID,
		SubtotalAmount:  a.SubtotalAmount,
		Currency:        a.Currency,
		Description:     a.Description,
		BillingCycle:    string(a.BillingCycle),
		RenewalDay:      a.RenewalDay,
		GracePeriodDays: a.GracePeriodDays,
		CustomerType:    a.CustomerType,
		SpecialRules:    a.SpecialRules,
		IsActive:        a.IsActive,
		StartDate:       dto.FormatDate(a.StartDate),
		EndDate:         dto.FormatDatePtr(a.EndDate),
	}
}

func toPeriodResponse(p *entity.ServicePeriod, paid status.PaidSet) dto.PeriodResponse {
	out := dto.PeriodResponse{
		ID:                   p.ID,
		CustomerID:           p.CustomerID,
		StartDate:            dto.FormatDate(p.StartDate),
		EndDate:              dto.FormatDate(p.EndDate),
		SubtotalAmount:       p.SubtotalAmount,
		Currency:             p.Currency,
		Origin:               string(p.Origin),
		Status:               string(p.Status),
		BillingStatus:        string(p.BillingStatus),
		SuggestedInvoiceDate: dto.FormatDatePtr(p.SuggestedInvoiceDate),
		Notes:                p.Notes,
		PlanID:               p.PlanID,
		Quantity:             p.Quantity,
		Paid:                 paid.Has(p.ID),
	}
	if p.PlanSnapshot != nil {
		out.PlanName = p.PlanSnapshot.Name
	}
	if p.Frequency != nil {
		f := string(*p.Frequency)
		out.Frequency = &f
	}
	return out
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	ids := p.PeriodIDs
	if ids == nil {
		ids = []string{}
	}
	return dto.PaymentResponse{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		PaymentDate: dto.FormatDate(p.PaymentDate),
		Method:      p.Method,
		Reference:   p.Reference,
		Notes:       p.Notes,
		Status:      string(p.Status),
		InvoiceID:   p.InvoiceID,
		PeriodIDs:   ids,
	}
}

func toInvoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:              inv.ID,
		CustomerID:      inv.CustomerID,
		ServicePeriodID: inv.ServicePeriodID,
		Status:          string(inv.Status),
		SubtotalAmount:  inv.SubtotalAmount,
		TaxAmount:       inv.TaxAmount,
		TotalAmount:     inv.TotalAmount,
		Currency:        inv.Currency,
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceURL:      inv.InvoiceURL,
		GeneratedDate:   dto.FormatDatePtr(inv.GeneratedDate),
		PaidDate:        dto.FormatDatePtr(inv.PaidDate),
		PaidByPaymentID: inv.PaidByPaymentID,
		Notes:           inv.Notes,
	}
}
