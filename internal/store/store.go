// Package store is the persistence service: a key-value abstraction over a
// durable scope (survives restarts) and a session scope (cleared or expired
// with the editing session). Entities are stored as JSON under fixed logical
// keys; a key never exists in both scopes.
package store

import "context"

// Storage keys. Profiles, templates, the current invoice and the number
// sequence live in the durable scope; the draft invoice lives in the session
// scope only.
const (
	KeyCompanyProfiles  = "zapinvoice_company_profiles"
	KeyInvoiceTemplates = "zapinvoice_invoice_templates"
	KeyCurrentInvoice   = "zapinvoice_current_invoice"
	KeyInvoiceSequence  = "zapinvoice_invoice_sequence"
	KeyDraftInvoice     = "zapinvoice_draft_invoice"
)

// KV is a minimal keyed store. Implementations must treat Get of a missing
// key as (found=false, nil error) and Delete of a missing key as a no-op.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
