package fundval

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
)

// Amounts in this package are floats in minor units (pence). Formatting goes
// through go-money so currency symbol and fraction rules stay correct.

// FormatGBP formats an amount of pence as a pound value, e.g. "£5,843.76".
func FormatGBP(pence float64) string {
	return money.New(int64(math.Round(pence)), money.GBP).Display()
}

// AbbreviateGBP formats an amount of pence compactly, e.g. "£1.2k".
// Used in budget health messages where space is short.
func AbbreviateGBP(pence float64) string {
	cur := money.GetCurrency(money.GBP)
	pounds := pence / 100

	sign := ""
	if pounds < 0 {
		sign = "-"
		pounds = -pounds
	}

	switch {
	case pounds >= 1e9:
		return fmt.Sprintf("%s%s%.1fbn", sign, cur.Grapheme, pounds/1e9)
	case pounds >= 1e6:
		return fmt.Sprintf("%s%s%.1fm", sign, cur.Grapheme, pounds/1e6)
	case pounds >= 1e3:
		return fmt.Sprintf("%s%s%.1fk", sign, cur.Grapheme, pounds/1e3)
	default:
		return fmt.Sprintf("%s%s%.2f", sign, cur.Grapheme, pounds)
	}
}
