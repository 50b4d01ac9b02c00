package shared

import (
	"fmt"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is the display sentinel for missing values.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatCount formats n with locale digit grouping (1234567 -> "1,234,567").
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatCurrency formats v as whole US dollars with digit grouping.
func FormatCurrency(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

// FormatPercent formats a 0-100 percentage with one decimal place.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// MarshalJSON encodes v, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
