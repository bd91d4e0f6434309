package fundval

import (
	"testing"
	"time"

	"github.com/stvnw/fundval/date"
)

func TestComputeRowGains(t *testing.T) {
	funds := []Fund{{
		ID:           1,
		Name:         "City of London Investment Trust",
		Transactions: []Transaction{deal("2021-03-01", 104, 52.39, 15, 35)},
	}}
	cache := &PriceCache{
		StartTime:  date.MustParse("2021-03-10").Unix(),
		CacheTimes: []int64{0, 86400},
		Prices:     map[Id][]PriceGroup{1: singleGroup(0, 56.23, 56.19)},
	}

	g := ComputeRowGains(funds, cache)[1]
	if g == nil {
		t.Fatal("row gain = nil, want computed")
	}

	if g.Price != 56.19 {
		t.Errorf("Price = %v, want 56.19", g.Price)
	}
	if g.PreviousPrice != 56.23 {
		t.Errorf("PreviousPrice = %v, want 56.23", g.PreviousPrice)
	}
	if !closeTo(g.Value, 5843.76, 1e-6) {
		t.Errorf("Value = %v, want 5843.76", g.Value)
	}
	if g.GainAbs != 345 {
		t.Errorf("GainAbs = %v, want 345", g.GainAbs)
	}
	if g.Gain != 0.0628 {
		t.Errorf("Gain = %v, want 0.0628", g.Gain)
	}
	if g.DayGainAbs != -4 {
		t.Errorf("DayGainAbs = %v, want -4", g.DayGainAbs)
	}
	if g.DayGain != -0.0008 {
		t.Errorf("DayGain = %v, want -0.0008", g.DayGain)
	}
}

func TestRowGain_Nil(t *testing.T) {
	tx := []Transaction{deal("2021-03-01", 10, 100, 0, 0)}

	testCases := []struct {
		name   string
		fund   Fund
		groups []PriceGroup
	}{
		{"No Transactions", Fund{ID: 1}, singleGroup(0, 56.23)},
		{"No Price Groups", Fund{ID: 1, Transactions: tx}, nil},
		{"Empty Group Values", Fund{ID: 1, Transactions: tx}, []PriceGroup{{StartIndex: 0}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rowGain(tc.fund, tc.groups); got != nil {
				t.Errorf("rowGain() = %+v, want nil", got)
			}
		})
	}
}

func TestRowGain_SoldIncludesRealised(t *testing.T) {
	fund := Fund{ID: 1, Transactions: []Transaction{
		deal("2020-01-01", 10, 100, 0, 0),
		deal("2020-06-01", -10, 120, 0, 0),
	}}
	g := rowGain(fund, singleGroup(0, 125))
	if g == nil {
		t.Fatal("row gain = nil, want computed")
	}

	// flat position: value is the realised proceeds, not the zero paper value
	if g.Value != 1200 {
		t.Errorf("Value = %v, want 1200", g.Value)
	}
	if g.GainAbs != 200 {
		t.Errorf("GainAbs = %v, want 200", g.GainAbs)
	}
}

func TestRowGain_ZeroCost(t *testing.T) {
	// a fund holding only a sell has no buy cost to divide by
	fund := Fund{ID: 1, Transactions: []Transaction{deal("2020-01-01", -5, 10, 0, 0)}}
	g := rowGain(fund, singleGroup(0, 10))
	if g == nil {
		t.Fatal("row gain = nil, want computed")
	}
	if g.Gain != 0 || g.DayGain != 0 {
		t.Errorf("Gain, DayGain = %v, %v, want 0, 0", g.Gain, g.DayGain)
	}
}

func TestRowGains_Metadata(t *testing.T) {
	rg := RowGains{
		1: &RowGain{Gain: 0.10},
		2: &RowGain{Gain: -0.05},
		3: &RowGain{Gain: 0.05},
		4: &RowGain{Gain: 0},
		5: nil,
	}

	testCases := []struct {
		name string
		id   Id
		want Color
	}{
		{"Max Gain Fully Saturated", 1, colorFundUp},
		{"Min Gain Fully Saturated", 2, colorFundDown},
		{"Half Gain Interpolated", 3, Color{128, 243, 137}},
		{"Zero Gain White", 4, colorWhite},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := rg.Metadata(tc.id)
			if m == nil {
				t.Fatal("Metadata() = nil, want value")
			}
			if m.Color != tc.want {
				t.Errorf("Color = %+v, want %+v", m.Color, tc.want)
			}
		})
	}

	if m := rg.Metadata(5); m != nil {
		t.Errorf("Metadata(nil row) = %+v, want nil", m)
	}
	if m := rg.Metadata(99); m != nil {
		t.Errorf("Metadata(unknown id) = %+v, want nil", m)
	}
}

func TestPortfolioDayGain(t *testing.T) {
	// samples at noon so a transaction dated the second day lands between them
	start := date.MustParse("2021-01-01").Unix() + 43200
	cache := &PriceCache{
		StartTime:  start,
		CacheTimes: []int64{0, 86400},
		Prices: map[Id][]PriceGroup{
			1: singleGroup(0, 100, 110),
			2: singleGroup(0, 50, 49),
		},
	}
	funds := []Fund{
		{ID: 1, Transactions: []Transaction{
			deal("2020-12-01", 10, 100, 0, 0),
			deal("2021-01-02", 10, 110, 0, 0), // flow between the two samples
		}},
		{ID: 2, Transactions: []Transaction{deal("2020-12-01", 20, 50, 0, 0)}},
	}

	// fund 1: 10 held units gained 10 each, the mid-period buy cancels out.
	// fund 2: 20 units lost 1 each.
	abs := PortfolioDayGainAbs(funds, cache)
	if !closeTo(abs, 80, 1e-6) {
		t.Errorf("PortfolioDayGainAbs() = %v, want 80", abs)
	}

	// relative to the previous day's value of 1000 + 1000
	rel := PortfolioDayGain(funds, cache)
	if !closeTo(rel, 0.04, 1e-9) {
		t.Errorf("PortfolioDayGain() = %v, want 0.04", rel)
	}
}

func TestPortfolioDayGain_InsufficientSamples(t *testing.T) {
	cache := &PriceCache{
		StartTime:  1000,
		CacheTimes: []int64{0},
		Prices:     map[Id][]PriceGroup{1: singleGroup(0, 100)},
	}
	funds := []Fund{{ID: 1, Transactions: []Transaction{deal("2020-01-01", 10, 100, 0, 0)}}}

	if got := PortfolioDayGainAbs(funds, cache); got != 0 {
		t.Errorf("PortfolioDayGainAbs() = %v, want 0 with one sample", got)
	}
	if got := PortfolioDayGain(funds, cache); got != 0 {
		t.Errorf("PortfolioDayGain() = %v, want 0 with one sample", got)
	}
}

func TestFundsCachedValue(t *testing.T) {
	funds := []Fund{{
		ID: 1,
		Transactions: []Transaction{
			deal("2021-03-01", 104, 52.39, 15, 35),
			deal("2022-01-01", 1000, 1, 0, 0), // future dated, must not count
		},
	}}
	cache := &PriceCache{
		StartTime:  date.MustParse("2021-03-10").Unix(),
		CacheTimes: []int64{0, 86400},
		Prices:     map[Id][]PriceGroup{1: singleGroup(0, 56.23, 56.19)},
	}
	now := time.Date(2021, 3, 11, 12, 0, 0, 0, time.UTC)

	cv := FundsCachedValue(funds, cache, now)
	if !closeTo(cv.Value, 5843.76, 1e-6) {
		t.Errorf("Value = %v, want 5843.76", cv.Value)
	}
	if !closeTo(cv.GainAbs, 345.2, 1e-6) {
		t.Errorf("GainAbs = %v, want 345.2", cv.GainAbs)
	}
	if !closeTo(cv.Gain, 345.2/5498.56, 1e-9) {
		t.Errorf("Gain = %v, want %v", cv.Gain, 345.2/5498.56)
	}
	if !closeTo(cv.DayGainAbs, -4.16, 1e-6) {
		t.Errorf("DayGainAbs = %v, want -4.16", cv.DayGainAbs)
	}
	if cv.AgeText != "12 hours ago" {
		t.Errorf("AgeText = %q, want %q", cv.AgeText, "12 hours ago")
	}
}

func TestCacheAgeText(t *testing.T) {
	now := time.Unix(1_000_000, 0)

	testCases := []struct {
		name   string
		latest int64
		want   string
	}{
		{"Seconds", now.Unix() - 30, "30 seconds ago"},
		{"Rounded Minutes", now.Unix() - 90, "2 minutes ago"},
		{"Singular Hour", now.Unix() - 3600, "1 hour ago"},
		{"Days", now.Unix() - 3*86400, "3 days ago"},
		{"Weeks", now.Unix() - 15*86400, "2 weeks ago"},
		{"Future", now.Unix() + 60, "in the future!"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CacheAgeText(tc.latest, []int64{0}, now); got != tc.want {
				t.Errorf("CacheAgeText() = %q, want %q", got, tc.want)
			}
		})
	}

	if got := CacheAgeText(0, nil, now); got != "no values" {
		t.Errorf("CacheAgeText(no samples) = %q, want %q", got, "no values")
	}
}
