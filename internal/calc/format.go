package calc

import (
	"fmt"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zapinvoice/zapinvoice/internal/models"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount with the symbol of the given ISO 4217
// code. Unknown codes fall back to "CODE amount".
func FormatCurrency(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %.2f", code, Round2(amount))
	}
	return printer.Sprint(currency.Symbol(unit.Amount(Round2(amount))))
}

// FormatDate turns an ISO date string into a long-form display date.
// Unparseable input is returned unchanged.
func FormatDate(isoDate string) string {
	t, err := time.Parse(models.DateLayout, isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format("January 2, 2006")
}
