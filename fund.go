package fundval

import (
	"github.com/shopspring/decimal"

	"github.com/stvnw/fundval/date"
)

// Id identifies a fund.
type Id int64

// Transaction is a single recorded deal on a fund. Immutable once recorded.
//
// Units are signed: positive is a buy, negative is a sell. Price is the
// currency-per-unit in minor units (pence). The cost of a transaction is
// price*units + fees + taxes, so sells carry a negative cost.
type Transaction struct {
	Date    date.Date `json:"date"`
	Units   float64   `json:"units"`
	Price   float64   `json:"price"`
	Fees    float64   `json:"fees"`
	Taxes   float64   `json:"taxes"`
	Drip    bool      `json:"drip,omitempty"`
	Pension bool      `json:"pension,omitempty"`
}

// Cost returns the total money exchanged for this transaction, in minor units.
func (t Transaction) Cost() float64 { return t.Price*t.Units + t.Fees + t.Taxes }

// StockSplit is a multiplicative share adjustment. Transactions and prices
// recorded strictly before the split date are scaled by Ratio so that all
// history is comparable in current share terms.
type StockSplit struct {
	Date  date.Date `json:"date"`
	Ratio float64   `json:"ratio"`
}

// Fund is one tracked holding with its full deal and split history.
type Fund struct {
	ID               Id            `json:"id"`
	Name             string        `json:"item"`
	Transactions     []Transaction `json:"transactions"`
	Splits           []StockSplit  `json:"stockSplits,omitempty"`
	AllocationTarget float64       `json:"allocationTarget,omitempty"`
}

// roundTotal rounds an accumulated units or cost total to 4 decimal places.
// Totals are accumulated as floats but rounded exactly, so that a fund bought
// and fully sold nets out to exactly zero units.
func roundTotal(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}

// CombineSplits returns the product of all split ratios.
func CombineSplits(splits []StockSplit) float64 {
	product := 1.0
	for _, s := range splits {
		product *= s.Ratio
	}
	return product
}

// UnitRebase returns the cumulative ratio by which units dealt on a given
// date must be scaled to be expressed in current share terms. Only splits
// strictly after the deal date apply.
func UnitRebase(splits []StockSplit, on date.Date) float64 {
	product := 1.0
	for _, s := range splits {
		if s.Date.After(on) {
			product *= s.Ratio
		}
	}
	return product
}

// TotalUnits returns the net number of units held after all transactions,
// each split-adjusted for splits occurring after its date.
func TotalUnits(transactions []Transaction, splits []StockSplit) float64 {
	var sum float64
	for _, t := range transactions {
		sum += t.Units * UnitRebase(splits, t.Date)
	}
	return roundTotal(sum)
}

// TotalCost returns the net cost of all transactions, buys positive and
// sells negative, in minor units.
func TotalCost(transactions []Transaction) float64 {
	var sum float64
	for _, t := range transactions {
		sum += t.Cost()
	}
	return roundTotal(sum)
}

// BuyCost returns the total cost of the buy transactions only.
func BuyCost(transactions []Transaction) float64 {
	buys := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Units > 0 {
			buys = append(buys, t)
		}
	}
	return TotalCost(buys)
}

// RealisedValue returns the cash received from sells, net of fees and taxes.
// Sells have negative cost, so the realised value is its negation.
func RealisedValue(transactions []Transaction) float64 {
	sells := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Units < 0 {
			sells = append(sells, t)
		}
	}
	return -TotalCost(sells)
}

// PaperValue returns the mark-to-market value of the held units at the given
// rebased price.
func PaperValue(transactions []Transaction, splits []StockSplit, price float64) float64 {
	return price * TotalUnits(transactions, splits)
}

// IsSold reports whether the fund was traded and the position is now flat.
func IsSold(transactions []Transaction) bool {
	return len(transactions) > 0 && TotalUnits(transactions, nil) == 0
}

// FilterPastTransactions keeps the transactions dated on or before today.
// Future-dated transactions never count towards any money aggregation.
func FilterPastTransactions(today date.Date, transactions []Transaction) []Transaction {
	past := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if !t.Date.After(today) {
			past = append(past, t)
		}
	}
	return past
}
