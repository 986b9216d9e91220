package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for invoice dates.
const DateLayout = "2006-01-02"

// DefaultDueDays is added to the issue date when a due date is not chosen.
const DefaultDueDays = 30

// InvoiceItem is a single billable line. Amount is a cached derived field:
// it must equal the rounded product of Quantity and Rate as of the last
// recompute and is never entered directly.
type InvoiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// NewInvoiceItem returns a blank line item: empty description, quantity 1,
// rate and amount zero.
func NewInvoiceItem() InvoiceItem {
	return InvoiceItem{ID: uuid.NewString(), Quantity: 1}
}

// ItemPatch is a partial line-item update.
type ItemPatch struct {
	Description *string  `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Rate        *float64 `json:"rate,omitempty"`
}

// Apply merges the patch into the item. Amount is left for the recompute
// pass; callers must not read it between Apply and the next recompute.
func (it *InvoiceItem) Apply(patch ItemPatch) {
	if patch.Description != nil {
		it.Description = *patch.Description
	}
	if patch.Quantity != nil {
		it.Quantity = *patch.Quantity
	}
	if patch.Rate != nil {
		it.Rate = *patch.Rate
	}
}

// Invoice is the aggregate the state controller owns. The four derived
// monetary fields are consistent with Items, Discount and TaxRate as of the
// last recompute. Items keep insertion order for display.
type Invoice struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	Date          string `json:"date"`
	DueDate       string `json:"dueDate"`
	Currency      string `json:"currency"`
	ClientName    string `json:"clientName"`
	ClientEmail   string `json:"clientEmail,omitempty"`
	ClientAddress string `json:"clientAddress,omitempty"`

	Items []InvoiceItem `json:"items"`

	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	DiscountAmount float64 `json:"discountAmount"`
	TaxRate        float64 `json:"taxRate"`
	TaxAmount      float64 `json:"taxAmount"`
	Total          float64 `json:"total"`

	Notes          string         `json:"notes,omitempty"`
	CompanyProfile CompanyProfile `json:"companyProfile"`
}

// NewInvoice returns a default invoice issued today, due in 30 days, in USD,
// with no items and a blank embedded company profile.
func NewInvoice(number string) *Invoice {
	now := time.Now()
	return &Invoice{
		ID:             uuid.NewString(),
		Number:         number,
		Date:           now.Format(DateLayout),
		DueDate:        now.AddDate(0, 0, DefaultDueDays).Format(DateLayout),
		Currency:       "USD",
		Items:          []InvoiceItem{},
		CompanyProfile: NewCompanyProfile(),
	}
}

// Item returns the line with the given id, or nil.
func (inv *Invoice) Item(id string) *InvoiceItem {
	for i := range inv.Items {
		if inv.Items[i].ID == id {
			return &inv.Items[i]
		}
	}
	return nil
}

// InvoicePatch is a partial update of the aggregate's top-level fields.
// Derived totals and the item list are controller-owned and have no patch
// fields on purpose.
type InvoicePatch struct {
	Number        *string  `json:"number,omitempty"`
	Date          *string  `json:"date,omitempty"`
	DueDate       *string  `json:"dueDate,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	ClientName    *string  `json:"clientName,omitempty"`
	ClientEmail   *string  `json:"clientEmail,omitempty"`
	ClientAddress *string  `json:"clientAddress,omitempty"`
	Discount      *float64 `json:"discount,omitempty"`
	TaxRate       *float64 `json:"taxRate,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// TouchesTotals reports whether applying the patch requires a recompute.
// The rule is fixed: only Discount and TaxRate feed the monetary pipeline.
func (p InvoicePatch) TouchesTotals() bool {
	return p.Discount != nil || p.TaxRate != nil
}

// Apply merges the patch into the invoice. Recomputing afterwards is the
// caller's responsibility when TouchesTotals reports true.
func (inv *Invoice) Apply(patch InvoicePatch) {
	if patch.Number != nil {
		inv.Number = *patch.Number
	}
	if patch.Date != nil {
		inv.Date = *patch.Date
	}
	if patch.DueDate != nil {
		inv.DueDate = *patch.DueDate
	}
	if patch.Currency != nil {
		inv.Currency = *patch.Currency
	}
	if patch.ClientName != nil {
		inv.ClientName = *patch.ClientName
	}
	if patch.ClientEmail != nil {
		inv.ClientEmail = *patch.ClientEmail
	}
	if patch.ClientAddress != nil {
		inv.ClientAddress = *patch.ClientAddress
	}
	if patch.Discount != nil {
		inv.Discount = *patch.Discount
	}
	if patch.TaxRate != nil {
		inv.TaxRate = *patch.TaxRate
	}
	if patch.Notes != nil {
		inv.Notes = *patch.Notes
	}
}
