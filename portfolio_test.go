package fundval

import (
	"testing"

	"github.com/stvnw/fundval/date"
)

func TestInvestmentsBetweenDates(t *testing.T) {
	funds := []Fund{
		{ID: 1, Transactions: []Transaction{
			deal("2020-01-10", 10, 100, 5, 0),  // 1005
			deal("2020-02-10", 10, 110, 0, 0),  // 1100
			deal("2020-03-10", -5, 120, 0, 0),  // -600
			deal("2030-01-01", 99, 100, 0, 0),  // future, ignored
		}},
		{ID: 2, Transactions: []Transaction{
			deal("2020-02-20", 20, 50, 0, 10), // 1010
		}},
	}

	testCases := []struct {
		name        string
		left, right string
		want        float64
	}{
		{"Whole Span", "2020-01-01", "2020-12-31", 1005 + 1100 - 600 + 1010},
		{"February Only", "2020-02-01", "2020-02-29", 1100 + 1010},
		{"Left Boundary Inclusive", "2020-01-10", "2020-01-10", 1005},
		{"Sell Reduces", "2020-03-01", "2020-03-31", -600},
		{"Empty Span", "2020-04-01", "2020-04-30", 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := InvestmentsBetweenDates(funds, date.MustParse(tc.left), date.MustParse(tc.right))
			if !closeTo(got, tc.want, 1e-9) {
				t.Errorf("InvestmentsBetweenDates(%s, %s) = %v, want %v", tc.left, tc.right, got, tc.want)
			}
		})
	}
}

func TestPortfolio(t *testing.T) {
	funds := []Fund{
		{ID: 1, Name: "Priced", AllocationTarget: 60, Transactions: []Transaction{
			deal("2020-01-01", 100, 50, 10, 2),
		}},
		{ID: 2, Name: "Unpriced", Transactions: []Transaction{
			deal("2020-01-01", 10, 50, 0, 0),
		}},
		{ID: 3, Name: "Not Yet Bought", Transactions: []Transaction{
			deal("2030-01-01", 10, 50, 0, 0),
		}},
	}
	cache := &PriceCache{
		StartTime:  date.MustParse("2020-02-01").Unix(),
		CacheTimes: []int64{0},
		Prices: map[Id][]PriceGroup{
			1: singleGroup(0, 55),
			3: singleGroup(0, 55),
		},
	}

	items := Portfolio(funds, cache, date.MustParse("2020-03-01"))
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (unpriced and future-only funds skipped): %+v", len(items), items)
	}

	it := items[0]
	if it.ID != 1 || it.AllocationTarget != 60 {
		t.Errorf("item = %+v, want fund 1 with target 60", it)
	}
	if it.Value != 5500 {
		t.Errorf("Value = %v, want 5500", it.Value)
	}

	m := it.Metadata
	if m.UnitsBought != 100 || !closeTo(m.AvgBuyPrice, 50, 1e-9) {
		t.Errorf("bought = %v @ %v, want 100 @ 50", m.UnitsBought, m.AvgBuyPrice)
	}
	if m.Fees != 10 || m.Taxes != 2 {
		t.Errorf("fees, taxes = %v, %v, want 10, 2", m.Fees, m.Taxes)
	}
	if m.TotalCost != 5012 {
		t.Errorf("TotalCost = %v, want 5012", m.TotalCost)
	}
	if !closeTo(m.PnL, 5500-5012, 1e-9) {
		t.Errorf("PnL = %v, want 488", m.PnL)
	}
}

func TestPortfolioMetadata_SplitAdjusted(t *testing.T) {
	// 10 units bought at 100 before a 2:1 split are 20 units at 50 today
	f := Fund{
		ID: 1,
		Transactions: []Transaction{
			deal("2020-01-01", 10, 100, 0, 0),
			{Date: date.MustParse("2020-06-10"), Units: 4, Price: 48, Drip: true},
			deal("2020-07-01", -6, 55, 0, 0),
		},
		Splits: []StockSplit{split("2020-06-01", 2)},
	}

	m := portfolioMetadata(f, 0)
	if m.UnitsBought != 20 || !closeTo(m.AvgBuyPrice, 50, 1e-9) {
		t.Errorf("bought = %v @ %v, want 20 @ 50", m.UnitsBought, m.AvgBuyPrice)
	}
	if m.UnitsReinvested != 4 || !closeTo(m.AvgReinvestmentPrice, 48, 1e-9) {
		t.Errorf("reinvested = %v @ %v, want 4 @ 48", m.UnitsReinvested, m.AvgReinvestmentPrice)
	}
	if m.UnitsSold != 6 || !closeTo(m.AvgSellPrice, 55, 1e-9) {
		t.Errorf("sold = %v @ %v, want 6 @ 55", m.UnitsSold, m.AvgSellPrice)
	}
}

func TestStockValue(t *testing.T) {
	funds := []Fund{
		{ID: 1, Name: "A", Transactions: []Transaction{deal("2020-01-01", 100, 50, 0, 0)}},
		{ID: 2, Name: "B", Transactions: []Transaction{deal("2020-01-01", 10, 20, 0, 0)}},
	}
	cache := &PriceCache{
		StartTime:  date.MustParse("2020-02-01").Unix(),
		CacheTimes: []int64{0},
		Prices: map[Id][]PriceGroup{
			1: singleGroup(0, 55),
			2: singleGroup(0, 25),
		},
	}

	got := StockValue(funds, cache, date.MustParse("2020-03-01"))
	if got != 100*55+10*25 {
		t.Errorf("StockValue() = %v, want %v", got, 100*55+10*25)
	}
}

func TestMaxAllocationTarget(t *testing.T) {
	funds := []Fund{
		{ID: 1, AllocationTarget: 50},
		{ID: 2, AllocationTarget: 30},
		{ID: 3, AllocationTarget: 40},
	}

	testCases := []struct {
		name string
		id   Id
		want float64
	}{
		{"Leftover", 3, 20},           // 100 - 50 - 30
		{"Excludes Own Target", 1, 30}, // 100 - 30 - 40
		{"Overallocated", 2, 10},      // 100 - 50 - 40
		{"New Fund", 99, 0},           // 100 - 120, clamped
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaxAllocationTarget(funds, tc.id); got != tc.want {
				t.Errorf("MaxAllocationTarget(%d) = %v, want %v", tc.id, got, tc.want)
			}
		})
	}

	if got := MaxAllocationTarget([]Fund{{ID: 1, AllocationTarget: 300}}, 2); got != 0 {
		t.Errorf("MaxAllocationTarget() = %v, want 0 when others exceed 100", got)
	}
	if got := MaxAllocationTarget(nil, 1); got != 100 {
		t.Errorf("MaxAllocationTarget(no funds) = %v, want 100", got)
	}
}

func TestPricesForRow(t *testing.T) {
	cache := &PriceCache{
		StartTime:  1000,
		CacheTimes: []int64{0, 100, 200},
		Prices: map[Id][]PriceGroup{
			1: {
				{StartIndex: 0, Values: []float64{50}, RebasePriceRatio: []float64{2}},
				{StartIndex: 2, Values: []float64{30}, RebasePriceRatio: []float64{1}},
			},
		},
	}

	runs := PricesForRow(cache, 1)
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if p := runs[0][0]; p.Time != 1000 || p.Value != 25 {
		t.Errorf("first point = %+v, want rebased price 25 at 1000", p)
	}
	if p := runs[1][0]; p.Time != 1200 || p.Value != 30 {
		t.Errorf("second point = %+v, want 30 at 1200", p)
	}

	if runs := PricesForRow(cache, 99); runs != nil {
		t.Errorf("PricesForRow(unknown) = %+v, want nil", runs)
	}
}
