package fundval

import (
	"math"

	"github.com/stvnw/fundval/date"
)

// FundsCostToDate sums the net cost of every transaction dated on or before
// the given day, across all funds. Future-dated transactions never count.
func FundsCostToDate(on date.Date, funds []Fund) float64 {
	var sum float64
	for _, f := range funds {
		sum += TotalCost(FilterPastTransactions(on, f.Transactions))
	}
	return sum
}

// InvestmentsBetweenDates returns the net money invested over [left, right]:
// cost to the right boundary minus cost to the day before the left one.
// Sells reduce the result.
func InvestmentsBetweenDates(funds []Fund, left, right date.Date) float64 {
	return FundsCostToDate(right, funds) - FundsCostToDate(left.Add(-1), funds)
}

// PortfolioItemMetadata summarises how a holding was built: units dealt per
// kind with their average split-adjusted prices, the friction paid, and the
// resulting profit or loss.
type PortfolioItemMetadata struct {
	UnitsBought          float64 `json:"unitsBought"`
	AvgBuyPrice          float64 `json:"avgBuyPrice"`
	UnitsSold            float64 `json:"unitsSold"`
	AvgSellPrice         float64 `json:"avgSellPrice"`
	UnitsReinvested      float64 `json:"unitsReinvested"`
	AvgReinvestmentPrice float64 `json:"avgReinvestmentPrice"`
	Fees                 float64 `json:"fees"`
	Taxes                float64 `json:"taxes"`
	TotalCost            float64 `json:"totalCost"`
	PnL                  float64 `json:"pnl"`
}

// PortfolioItem is one fund's valuation line in the portfolio view.
type PortfolioItem struct {
	ID               Id                    `json:"id"`
	Name             string                `json:"item"`
	Value            float64               `json:"value"`
	AllocationTarget float64               `json:"allocationTarget"`
	Metadata         PortfolioItemMetadata `json:"metadata"`
}

// dealSummary accumulates one kind of deal in current share terms.
type dealSummary struct {
	units float64
	spent float64 // units * rebased price
}

func (d *dealSummary) add(units, price, rebase float64) {
	adjusted := units * rebase
	d.units += adjusted
	d.spent += adjusted * (price / rebase)
}

func (d dealSummary) avgPrice() float64 {
	if d.units == 0 {
		return 0
	}
	return d.spent / d.units
}

func portfolioMetadata(f Fund, paperValue float64) PortfolioItemMetadata {
	var bought, sold, reinvested dealSummary
	var fees, taxes float64
	for _, t := range f.Transactions {
		rebase := UnitRebase(f.Splits, t.Date)
		switch {
		case t.Drip:
			reinvested.add(t.Units, t.Price, rebase)
		case t.Units > 0:
			bought.add(t.Units, t.Price, rebase)
		case t.Units < 0:
			sold.add(-t.Units, t.Price, rebase)
		}
		fees += t.Fees
		taxes += t.Taxes
	}

	cost := BuyCost(f.Transactions)
	return PortfolioItemMetadata{
		UnitsBought:          roundTotal(bought.units),
		AvgBuyPrice:          bought.avgPrice(),
		UnitsSold:            roundTotal(sold.units),
		AvgSellPrice:         sold.avgPrice(),
		UnitsReinvested:      roundTotal(reinvested.units),
		AvgReinvestmentPrice: reinvested.avgPrice(),
		Fees:                 fees,
		Taxes:                taxes,
		TotalCost:            cost,
		PnL:                  paperValue + RealisedValue(f.Transactions) - cost,
	}
}

// Portfolio values every fund with a known price and at least one past
// transaction as of the given day. The cache must be rebased.
func Portfolio(funds []Fund, cache *PriceCache, on date.Date) []PortfolioItem {
	out := make([]PortfolioItem, 0, len(funds))
	for _, f := range funds {
		price := cache.PriceAsOf(f.ID, on)
		past := FilterPastTransactions(on, f.Transactions)
		if price == 0 || len(past) == 0 {
			continue
		}
		scoped := f
		scoped.Transactions = past
		value := PaperValue(past, f.Splits, price)
		out = append(out, PortfolioItem{
			ID:               f.ID,
			Name:             f.Name,
			Value:            value,
			AllocationTarget: f.AllocationTarget,
			Metadata:         portfolioMetadata(scoped, value),
		})
	}
	return out
}

// StockValue is the total paper value of the portfolio as of the given day.
func StockValue(funds []Fund, cache *PriceCache, on date.Date) float64 {
	var sum float64
	for _, item := range Portfolio(funds, cache, on) {
		sum += item.Value
	}
	return sum
}

// MaxAllocationTarget returns the highest allocation a fund may be assigned:
// whatever the other funds leave of 100%, clamped to [0, 100].
func MaxAllocationTarget(funds []Fund, id Id) float64 {
	remainder := 100.0
	for _, f := range funds {
		if f.ID != id {
			remainder -= f.AllocationTarget
		}
	}
	return math.Max(0, math.Min(100, remainder))
}

// PricesForRow returns a fund's rebased price history as point runs for a
// table sparkline, one run per group, or nil when the fund has no cache
// entry. Times are absolute unix seconds.
func PricesForRow(cache *PriceCache, id Id) [][]Point {
	groups, ok := cache.Prices[id]
	if !ok {
		return nil
	}
	out := make([][]Point, len(groups))
	for gi, g := range groups {
		points := make([]Point, len(g.Values))
		for i, v := range g.Values {
			points[i] = Point{
				Time:  cache.SampleTime(g.StartIndex + i),
				Value: v / g.RebaseRatioAt(i),
			}
		}
		out[gi] = points
	}
	return out
}
