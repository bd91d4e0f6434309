package fundval

import (
	"math"

	"github.com/stvnw/fundval/date"
)

// test fixture helpers

// closeTo reports whether two floats agree within eps.
func closeTo(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

// deal builds a transaction from the usual shorthand.
func deal(on string, units, price, fees, taxes float64) Transaction {
	return Transaction{Date: date.MustParse(on), Units: units, Price: price, Fees: fees, Taxes: taxes}
}

// split builds a stock split.
func split(on string, ratio float64) StockSplit {
	return StockSplit{Date: date.MustParse(on), Ratio: ratio}
}

// singleGroup builds a one-group cache entry with all ratios at 1.
func singleGroup(startIndex int, values ...float64) []PriceGroup {
	ratios := make([]float64, len(values))
	for i := range ratios {
		ratios[i] = 1
	}
	return []PriceGroup{{StartIndex: startIndex, Values: values, RebasePriceRatio: ratios}}
}

// ret builds a Return for line-builder fixtures. Price and rebased price are
// equal unless the test sets them apart.
func ret(price, units, cost, realised float64) Return {
	return Return{Price: price, PriceRebased: price, Units: units, Cost: cost, Realised: realised}
}
