// Package services holds the invoice state controller: the single owner of
// the live Invoice aggregate. Mutations go through it, it triggers the
// calculation engine, and it snapshots the draft to the session scope so a
// reload does not lose unsaved work.
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/zapinvoice/zapinvoice/internal/calc"
	"github.com/zapinvoice/zapinvoice/internal/models"
	"github.com/zapinvoice/zapinvoice/internal/store"
	"github.com/zapinvoice/zapinvoice/internal/validation"
)

// ValidationResult is the advisory outcome of Validate. Valid is true iff
// Errors is empty.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// InvoiceController owns exactly one live Invoice aggregate. It is not
// safe for concurrent use; the HTTP layer serializes access.
//
// Contract: the four derived totals and every item amount are recomputed
// before any mutation returns, so reads for validation, preview or
// persistence never observe stale figures.
type InvoiceController struct {
	store *store.Service
	log   *logrus.Logger
	inv   *models.Invoice
}

// NewInvoiceController adopts the persisted session draft when one exists
// (recomputing its totals on the way in), otherwise it starts from a fresh
// default invoice.
func NewInvoiceController(ctx context.Context, st *store.Service, log *logrus.Logger) *InvoiceController {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &InvoiceController{store: st, log: log}
	if draft := st.GetDraftInvoice(ctx); draft != nil {
		c.inv = draft
		c.recompute()
	} else {
		c.inv = c.CreateDefault(ctx)
	}
	return c
}

// Invoice exposes the live aggregate for reads. Callers must not mutate it.
func (c *InvoiceController) Invoice() *models.Invoice {
	return c.inv
}

// CreateDefault builds a fresh invoice with the next number from the
// device-local sequence. It does not replace the live aggregate; CreateNew
// does that.
func (c *InvoiceController) CreateDefault(ctx context.Context) *models.Invoice {
	return models.NewInvoice(c.store.NextInvoiceNumber(ctx))
}

// AddItem appends a blank line (quantity 1, rate 0) and recomputes. New
// items always go to the end; display order is insertion order.
func (c *InvoiceController) AddItem(ctx context.Context) models.InvoiceItem {
	item := models.NewInvoiceItem()
	c.inv.Items = append(c.inv.Items, item)
	c.recompute()
	c.saveDraft(ctx)
	return item
}

// RemoveItem drops the line with the given id. Unknown ids are a no-op, but
// the recompute still runs so the call is uniformly safe.
func (c *InvoiceController) RemoveItem(ctx context.Context, itemID string) {
	kept := c.inv.Items[:0]
	for _, it := range c.inv.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	c.inv.Items = kept
	c.recompute()
	c.saveDraft(ctx)
}

// UpdateItem merges the patch into the matching line and recomputes, so the
// line's amount is never stale when this returns. Unknown ids are a no-op.
func (c *InvoiceController) UpdateItem(ctx context.Context, itemID string, patch models.ItemPatch) bool {
	item := c.inv.Item(itemID)
	if item == nil {
		return false
	}
	item.Apply(patch)
	c.recompute()
	c.saveDraft(ctx)
	return true
}

// UpdateCompanyProfile merges profile fields. Profile data is outside the
// monetary pipeline, so no recompute runs.
func (c *InvoiceController) UpdateCompanyProfile(ctx context.Context, patch models.CompanyProfilePatch) {
	c.inv.CompanyProfile.Apply(patch)
	c.saveDraft(ctx)
}

// UpdateInvoice merges top-level fields. The recompute rule is fixed and
// explicit: only Discount and TaxRate feed the totals, so editing notes or
// client fields re-runs no arithmetic.
func (c *InvoiceController) UpdateInvoice(ctx context.Context, patch models.InvoicePatch) {
	c.inv.Apply(patch)
	if patch.TouchesTotals() {
		c.recompute()
	}
	c.saveDraft(ctx)
}

// Recompute re-derives every item amount from its quantity and rate, then
// the four totals. It is a fixed point: a second call with no intervening
// mutation changes nothing.
func (c *InvoiceController) Recompute(ctx context.Context) {
	c.recompute()
	c.saveDraft(ctx)
}

func (c *InvoiceController) recompute() {
	for i := range c.inv.Items {
		c.inv.Items[i].Amount = calc.ItemAmount(c.inv.Items[i].Quantity, c.inv.Items[i].Rate)
	}
	totals := calc.ComputeAll(c.inv.Items, c.inv.Discount, c.inv.TaxRate)
	c.inv.Subtotal = totals.Subtotal
	c.inv.DiscountAmount = totals.DiscountAmount
	c.inv.TaxAmount = totals.TaxAmount
	c.inv.Total = totals.Total
}

// Validate collects the ordered, user-facing reasons the invoice cannot be
// saved or previewed yet. It mutates nothing; gating on the result is the
// presentation layer's job.
func (c *InvoiceController) Validate() ValidationResult {
	inv := c.inv
	errs := validation.Errors{}
	errs = errs.Require(inv.CompanyProfile.Name, "Company name is required")
	errs = errs.Require(inv.CompanyProfile.Email, "Company email is required")
	if inv.CompanyProfile.Email != "" {
		errs = errs.Check(validation.ValidEmail(inv.CompanyProfile.Email), "Company email must be a valid email address")
	}
	errs = errs.Require(inv.ClientName, "Client name is required")
	if inv.ClientEmail != "" {
		errs = errs.Check(validation.ValidEmail(inv.ClientEmail), "Client email must be a valid email address")
	}
	errs = errs.Require(inv.Number, "Invoice number is required")
	errs = errs.Require(inv.Date, "Invoice date is required")
	errs = errs.Require(inv.DueDate, "Due date is required")
	errs = errs.Check(len(inv.Items) > 0, "At least one item is required")
	for i, it := range inv.Items {
		errs = errs.Require(it.Description, fmt.Sprintf("Item %d: Description is required", i+1))
		errs = errs.Check(it.Quantity > 0, fmt.Sprintf("Item %d: Quantity must be greater than 0", i+1))
		errs = errs.Check(it.Rate >= 0, fmt.Sprintf("Item %d: Rate cannot be negative", i+1))
	}
	return ValidationResult{Valid: errs.Empty(), Errors: errs}
}

// CreateNew replaces the aggregate with a fresh default invoice, carrying
// the company profile over when one has been filled in so branding survives.
func (c *InvoiceController) CreateNew(ctx context.Context) {
	next := c.CreateDefault(ctx)
	if c.inv.CompanyProfile.Name != "" {
		next.CompanyProfile = c.inv.CompanyProfile
	}
	c.inv = next
	c.saveDraft(ctx)
}

// SaveInvoice persists the aggregate to the durable current-invoice slot.
// Validation gating happens at the caller.
func (c *InvoiceController) SaveInvoice(ctx context.Context) error {
	return c.store.SaveCurrentInvoice(ctx, c.inv)
}

// LoadSavedInvoice replaces the aggregate with the durable current invoice,
// if one exists. Totals are recomputed on the way in.
func (c *InvoiceController) LoadSavedInvoice(ctx context.Context) bool {
	saved := c.store.GetCurrentInvoice(ctx)
	if saved == nil {
		return false
	}
	c.inv = saved
	c.recompute()
	c.saveDraft(ctx)
	return true
}

// SaveCompanyProfile stores the embedded profile in the durable collection
// and adopts the stored id when one was generated.
func (c *InvoiceController) SaveCompanyProfile(ctx context.Context) (models.CompanyProfile, error) {
	stored, err := c.store.SaveCompanyProfile(ctx, c.inv.CompanyProfile)
	if err != nil {
		return stored, err
	}
	c.inv.CompanyProfile = stored
	c.saveDraft(ctx)
	return stored, nil
}

// LoadCompanyProfile merges the stored profile with the given id into the
// aggregate. Returns false when no such profile exists.
func (c *InvoiceController) LoadCompanyProfile(ctx context.Context, id string) bool {
	for _, p := range c.store.ListCompanyProfiles(ctx) {
		if p.ID == id {
			c.inv.CompanyProfile = p
			c.saveDraft(ctx)
			return true
		}
	}
	return false
}

// SaveAsTemplate snapshots the aggregate's profile, items, rates and notes
// into a named template in the durable collection.
func (c *InvoiceController) SaveAsTemplate(ctx context.Context, name string) (models.InvoiceTemplate, error) {
	return c.store.SaveInvoiceTemplate(ctx, models.TemplateFromInvoice(name, c.inv))
}

// ApplyTemplate replaces the aggregate with a fresh invoice pre-filled from
// the template. Returns false when no such template exists.
func (c *InvoiceController) ApplyTemplate(ctx context.Context, id string) bool {
	for _, tpl := range c.store.ListInvoiceTemplates(ctx) {
		if tpl.ID != id {
			continue
		}
		next := c.CreateDefault(ctx)
		next.CompanyProfile = tpl.CompanyProfile
		next.Items = make([]models.InvoiceItem, len(tpl.DefaultItems))
		copy(next.Items, tpl.DefaultItems)
		next.TaxRate = tpl.DefaultTaxRate
		next.Discount = tpl.DefaultDiscount
		next.Notes = tpl.DefaultNotes
		c.inv = next
		c.recompute()
		c.saveDraft(ctx)
		return true
	}
	return false
}

// saveDraft snapshots the aggregate into the session scope. Best effort: a
// failing session store must never break an edit.
func (c *InvoiceController) saveDraft(ctx context.Context) {
	if err := c.store.SaveDraftInvoice(ctx, c.inv); err != nil {
		c.log.WithError(err).Debug("draft snapshot failed")
	}
}
