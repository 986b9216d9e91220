package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceTemplate is a saveable preset used to pre-fill future invoices.
// It bundles a company profile with default items, rates and notes; the live
// draft never depends on one.
type InvoiceTemplate struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	CompanyProfile  CompanyProfile `json:"companyProfile"`
	DefaultItems    []InvoiceItem  `json:"defaultItems,omitempty"`
	DefaultTaxRate  float64        `json:"defaultTaxRate"`
	DefaultDiscount float64        `json:"defaultDiscount"`
	DefaultNotes    string         `json:"defaultNotes,omitempty"`
	CreatedAt       string         `json:"createdAt"`
}

// TemplateFromInvoice snapshots the invoice's profile, items, rates and notes
// into a new template.
func TemplateFromInvoice(name string, inv *Invoice) InvoiceTemplate {
	items := make([]InvoiceItem, len(inv.Items))
	copy(items, inv.Items)
	return InvoiceTemplate{
		ID:              uuid.NewString(),
		Name:            name,
		CompanyProfile:  inv.CompanyProfile,
		DefaultItems:    items,
		DefaultTaxRate:  inv.TaxRate,
		DefaultDiscount: inv.Discount,
		DefaultNotes:    inv.Notes,
		CreatedAt:       time.Now().Format(time.RFC3339),
	}
}
