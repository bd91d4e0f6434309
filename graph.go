package fundval

import (
	"sort"

	"github.com/stvnw/fundval/date"
)

// FundOrder is one deal condensed for display on a fund's chart.
type FundOrder struct {
	Time           int64   `json:"time"`
	IsSell         bool    `json:"isSell"`
	IsReinvestment bool    `json:"isReinvestment"`
	IsPension      bool    `json:"isPension"`
	Fees           float64 `json:"fees"`
	Units          float64 `json:"units"`
	Price          float64 `json:"price"`
	Size           float64 `json:"size"`
}

// FundItem is a chart legend entry: a fund, its assigned color and its deal
// markers. The synthetic Overall item aggregates every fund.
type FundItem struct {
	ID     Id          `json:"id"`
	Name   string      `json:"item"`
	Color  Color       `json:"color"`
	Orders []FundOrder `json:"orders"`
}

// ChartLine is one plottable line: a fund (or the Overall aggregate) and one
// contiguous run of points. A fund with several return groups yields several
// lines sharing its id and color.
type ChartLine struct {
	ID    Id      `json:"id"`
	Name  string  `json:"item"`
	Color Color   `json:"color"`
	Data  []Point `json:"data"`
}

func mapFundOrder(t Transaction) FundOrder {
	units := t.Units
	if units < 0 {
		units = -units
	}
	size := t.Units * t.Price
	if size < 0 {
		size = -size
	}
	return FundOrder{
		Time:           t.Date.Unix(),
		IsSell:         t.Units < 0,
		IsReinvestment: t.Drip,
		IsPension:      t.Pension,
		Fees:           t.Fees + t.Taxes,
		Units:          units,
		Price:          t.Price,
		Size:           size,
	}
}

func sortFundOrders(orders []FundOrder) []FundOrder {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Time < orders[j].Time })
	return orders
}

// itemInfo is one fund prepared for charting: transactions filtered to now,
// and for every price sample the subset of transactions known at that point,
// so returns never leak future deals backward.
type itemInfo struct {
	fund               Fund
	groups             []PriceGroup
	transactionsToDate [][][]Transaction // per group, per sample
	latestValue        float64
}

// groupsFallback stands in for a fund with no cache entry, so its
// transactions still register on the shared timeline.
var groupsFallback = []PriceGroup{{StartIndex: 0, Values: []float64{0}, RebasePriceRatio: []float64{1}}}

// itemsWithInfo prepares every fund with at least one known transaction for
// charting, sorted by latest value descending. The cache must be rebased.
func itemsWithInfo(funds []Fund, cache *PriceCache, now date.Date) []itemInfo {
	items := make([]itemInfo, 0, len(funds))
	for _, f := range funds {
		fund := f
		fund.Transactions = FilterPastTransactions(now, f.Transactions)

		groups := cache.Prices[f.ID]
		if len(groups) == 0 {
			groups = groupsFallback
		}

		toDate := make([][][]Transaction, len(groups))
		anyKnown := false
		for gi, g := range groups {
			toDate[gi] = make([][]Transaction, len(g.Values))
			for i := range g.Values {
				if gi == len(groups)-1 && i == len(g.Values)-1 {
					toDate[gi][i] = fund.Transactions
				} else {
					limit := cache.StartTime + cache.CacheTimes[i+g.StartIndex]
					var known []Transaction
					for _, t := range fund.Transactions {
						if t.Date.Unix() < limit {
							known = append(known, t)
						}
					}
					toDate[gi][i] = known
				}
				if len(toDate[gi][i]) > 0 {
					anyKnown = true
				}
			}
		}
		if !anyKnown {
			continue
		}

		var latestValue float64
		lastGroup := groups[len(groups)-1]
		if n := len(lastGroup.Values); n > 0 {
			price := lastGroup.Values[n-1] / lastGroup.RebaseRatioAt(n-1)
			latestValue = price * TotalUnits(fund.Transactions, fund.Splits)
		}

		items = append(items, itemInfo{
			fund:               fund,
			groups:             groups,
			transactionsToDate: toDate,
			latestValue:        latestValue,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].latestValue != items[j].latestValue {
			return items[i].latestValue > items[j].latestValue
		}
		return items[i].fund.ID < items[j].fund.ID
	})
	return items
}

func hiddenBecauseSold(items []itemInfo, viewSold bool) map[Id]bool {
	hidden := make(map[Id]bool, len(items))
	for _, it := range items {
		hidden[it.fund.ID] = !viewSold && IsSold(it.fund.Transactions)
	}
	return hidden
}

// returnsByID derives each charted fund's segmented return history.
func returnsByID(items []itemInfo) FundsWithReturns {
	out := make(FundsWithReturns, len(items))
	for _, it := range items {
		groups := make([]ReturnGroup, len(it.groups))
		for gi, g := range it.groups {
			values := make([]Return, len(g.Values))
			for i, price := range g.Values {
				known := it.transactionsToDate[gi][i]
				values[i] = Return{
					Price:        price,
					PriceRebased: price / g.RebaseRatioAt(i),
					Units:        TotalUnits(known, it.fund.Splits),
					Cost:         BuyCost(known),
					Realised:     RealisedValue(known),
				}
			}
			groups[gi] = ReturnGroup{StartIndex: g.StartIndex, Values: values}
		}
		out[it.fund.ID] = groups
	}
	return out
}

// FundItems assembles the chart legend: the synthetic Overall item first,
// then every visible fund sorted by latest value descending. A fully sold
// fund is hidden unless viewSold is set; Overall is never hidden.
func FundItems(funds []Fund, cache *PriceCache, now date.Date, viewSold bool) []FundItem {
	items := itemsWithInfo(funds, cache, now)
	hidden := hiddenBecauseSold(items, viewSold)

	var allOrders []FundOrder
	for _, it := range items {
		for _, t := range it.fund.Transactions {
			allOrders = append(allOrders, mapFundOrder(t))
		}
	}

	out := []FundItem{{
		ID:     OverallID,
		Name:   "Overall",
		Color:  colorBlack,
		Orders: sortFundOrders(allOrders),
	}}
	for _, it := range items {
		if hidden[it.fund.ID] {
			continue
		}
		orders := make([]FundOrder, 0, len(it.fund.Transactions))
		for _, t := range it.fund.Transactions {
			orders = append(orders, mapFundOrder(t))
		}
		out = append(out, FundItem{
			ID:     it.fund.ID,
			Name:   it.fund.Name,
			Color:  colorKey(abbreviateFundName(it.fund.Name)),
			Orders: sortFundOrders(orders),
		})
	}
	return out
}

// FundLines produces every chart mode's line set for the visible funds,
// Overall included. The cache must be rebased.
func FundLines(funds []Fund, cache *PriceCache, now date.Date, viewSold bool) map[Mode][]ChartLine {
	items := itemsWithInfo(funds, cache, now)
	hidden := hiddenBecauseSold(items, viewSold)
	fr := returnsByID(items)
	fundItems := FundItems(funds, cache, now, viewSold)

	out := make(map[Mode][]ChartLine, len(Modes))
	for _, mode := range Modes {
		var lines []ChartLine
		for _, item := range fundItems {
			if hidden[item.ID] {
				continue
			}
			for _, data := range FundLineProcessed(fr, cache.CacheTimes, mode, item.ID) {
				lines = append(lines, ChartLine{ID: item.ID, Name: item.Name, Color: item.Color, Data: data})
			}
		}
		out[mode] = lines
	}
	return out
}
