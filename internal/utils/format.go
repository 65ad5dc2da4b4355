package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var hebrewMonths = [...]string{
	"ינואר", "פברואר", "מרץ", "אפריל", "מאי", "יוני",
	"יולי", "אוגוסט", "ספטמבר", "אוקטובר", "נובמבר", "דצמבר",
}

// Formatter renders money and month labels for one locale.
type Formatter struct {
	locale  string
	printer *message.Printer
}

// NewFormatter creates a formatter; unknown locales fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
		locale = "en"
	}
	return &Formatter{
		locale:  strings.ToLower(locale),
		printer: message.NewPrinter(tag),
	}
}

// Amount formats a money value with thousands separators and at most two
// fraction digits, none forced.
func (f *Formatter) Amount(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

// MonthName returns the localized name of month 1..12.
func (f *Formatter) MonthName(month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d", month)
	}
	if strings.HasPrefix(f.locale, "he") {
		return hebrewMonths[month-1]
	}
	return time.Month(month).String()
}

// MonthLabel returns e.g. "March 2026".
func (f *Formatter) MonthLabel(month, year int) string {
	return fmt.Sprintf("%s %d", f.MonthName(month), year)
}
