package dto

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MoneyFormatter renders rupee amounts for display, grouped the way the
// configured locale groups digits
type MoneyFormatter struct {
	printer *message.Printer
}

// NewMoneyFormatter creates a formatter for a BCP 47 locale such as
// "en-IN". Unparseable locales fall back to Indian English.
func NewMoneyFormatter(locale string) *MoneyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse("en-IN")
	}
	return &MoneyFormatter{printer: message.NewPrinter(tag)}
}

// Format renders d with two decimals and a rupee sign, e.g. ₹4,50,000.00
// for en-IN
func (f *MoneyFormatter) Format(d decimal.Decimal) string {
	v, _ := d.Round(2).Float64()
	return f.printer.Sprintf("₹%v", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
