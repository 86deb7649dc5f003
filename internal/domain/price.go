package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var priceLocale = language.MustParse("en-IN")

// FormatPrice renders an amount in rupees with Indian digit grouping,
// e.g. 12345 as "₹12,345".
func FormatPrice(amount int64) string {
	return message.NewPrinter(priceLocale).Sprintf("₹%d", amount)
}
