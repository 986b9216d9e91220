// Package calc is the invoice calculation engine: pure arithmetic over line
// items and two percentage rates. Every function is total; validation of the
// inputs belongs to the state controller, not here.
//
// All intermediate math runs on exact decimals and every published figure is
// rounded to cents (half away from zero) before it leaves the package, so no
// unrounded fraction is ever carried forward. Discount is always applied
// before tax.
package calc

import (
	"github.com/shopspring/decimal"

	"github.com/zapinvoice/zapinvoice/internal/models"
)

// Totals are the four derived monetary fields of an invoice.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	TaxAmount      float64 `json:"taxAmount"`
	Total          float64 `json:"total"`
}

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Round2 rounds a value to cents, half away from zero.
func Round2(x float64) float64 {
	return round2(decimal.NewFromFloat(x))
}

// ItemAmount derives a line amount from quantity and rate.
func ItemAmount(quantity, rate float64) float64 {
	return round2(decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(rate)))
}

// Subtotal sums the already-rounded per-item amounts. The extra rounding is
// idempotent but keeps the no-carried-fractions policy explicit.
func Subtotal(items []models.InvoiceItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Amount))
	}
	return round2(sum)
}

// DiscountAmount derives the discount from the raw subtotal.
func DiscountAmount(subtotal, discountPct float64) float64 {
	return round2(decimal.NewFromFloat(subtotal).Mul(decimal.NewFromFloat(discountPct)).Div(hundred))
}

// TaxAmount derives tax from the post-discount base, not the raw subtotal.
func TaxAmount(subtotalAfterDiscount, taxPct float64) float64 {
	return round2(decimal.NewFromFloat(subtotalAfterDiscount).Mul(decimal.NewFromFloat(taxPct)).Div(hundred))
}

// Total is subtotal minus discount plus tax.
func Total(subtotal, discountAmount, taxAmount float64) float64 {
	return round2(decimal.NewFromFloat(subtotal).
		Sub(decimal.NewFromFloat(discountAmount)).
		Add(decimal.NewFromFloat(taxAmount)))
}

// ComputeAll composes the pipeline in its contractual order: subtotal from
// item amounts, then discount, then tax on the discounted base, then total.
// Item amounts are taken as given; re-deriving them from quantity and rate is
// the controller's recompute step.
func ComputeAll(items []models.InvoiceItem, discountPct, taxPct float64) Totals {
	subtotal := Subtotal(items)
	discountAmount := DiscountAmount(subtotal, discountPct)
	afterDiscount := decimal.NewFromFloat(subtotal).Sub(decimal.NewFromFloat(discountAmount)).InexactFloat64()
	taxAmount := TaxAmount(afterDiscount, taxPct)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          Total(subtotal, discountAmount, taxAmount),
	}
}
