package view

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//nolint:gochecknoglobals // Shared printer; message.Printer is safe for concurrent use
var moneyPrinter = message.NewPrinter(language.Russian)

// Money renders an amount with two decimals and locale-aware digit grouping.
func Money(value float64) string {
	return moneyPrinter.Sprintf("%.2f", value)
}

// MoneyPtr renders an optional amount, "-" when absent.
func MoneyPtr(value *float64) string {
	if value == nil {
		return "-"
	}
	return Money(*value)
}

// DateTime renders a timestamp in local time, "-" when unset.
func DateTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("02.01.2006 15:04:05")
}

// OrDash substitutes "-" for blank table cells.
func OrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
