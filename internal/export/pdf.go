// Package export defines the PDF-export boundary. Rendering and PDF byte
// generation live with the presentation collaborator; this package owns the
// contract around it: the download filename and the exporter interface.
package export

import (
	"context"
	"strings"

	"github.com/zapinvoice/zapinvoice/internal/models"
)

// Exporter produces a downloadable document for a fully-valid invoice.
// On failure it returns a single error and retains no partial file.
type Exporter interface {
	Export(ctx context.Context, inv *models.Invoice) (filename string, err error)
}

// Filename derives the download name from the invoice number and client
// name, e.g. "INV_2026_0001_Acme_Corp.pdf".
func Filename(inv *models.Invoice) string {
	return sanitize(inv.Number) + "_" + sanitize(inv.ClientName) + ".pdf"
}

// sanitize replaces every non-alphanumeric rune with an underscore so the
// result is safe as a filename on any platform.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
