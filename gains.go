package fundval

import (
	"fmt"
	"math"
	"time"

	"github.com/stvnw/fundval/date"
)

// roundGain rounds a relative gain to basis-point precision.
func roundGain(v float64) float64 { return math.Round(10000*v) / 10000 }

// roundAbs rounds an absolute amount to the nearest whole minor unit.
func roundAbs(v float64) float64 { return math.Round(v) }

// RowGain is the computed return of one fund as of the latest price sample.
type RowGain struct {
	Price         float64 `json:"price"`         // latest rebased price
	PreviousPrice float64 `json:"previousPrice"` // second to latest, or latest if only one sample
	Value         float64 `json:"value"`         // paper value, or paper+realised once fully sold
	Gain          float64 `json:"gain"`
	GainAbs       float64 `json:"gainAbs"`
	DayGain       float64 `json:"dayGain"`
	DayGainAbs    float64 `json:"dayGainAbs"`
}

// RowGains maps fund id to its computed return. A nil entry means the fund
// lacks the data to compute one: no transactions, or no price samples. Nil is
// deliberate: consumers must distinguish "cannot compute" from "zero".
type RowGains map[Id]*RowGain

// ComputeRowGains computes the return of every fund against a rebased cache.
func ComputeRowGains(funds []Fund, cache *PriceCache) RowGains {
	out := make(RowGains, len(funds))
	for _, f := range funds {
		out[f.ID] = rowGain(f, cache.Prices[f.ID])
	}
	return out
}

func rowGain(f Fund, groups []PriceGroup) *RowGain {
	if len(f.Transactions) == 0 || len(groups) == 0 {
		return nil
	}
	for _, g := range groups {
		if len(g.Values) == 0 {
			return nil
		}
	}

	var flat []float64
	for _, g := range groups {
		flat = append(flat, g.RebasedValues()...)
	}

	latest := flat[len(flat)-1]
	previous := latest
	if len(flat) > 1 {
		previous = flat[len(flat)-2]
	}

	paper := PaperValue(f.Transactions, f.Splits, latest)
	previousPaper := PaperValue(f.Transactions, f.Splits, previous)
	realised := RealisedValue(f.Transactions)
	cost := BuyCost(f.Transactions)

	gainAbs := realised + paper - cost
	dayGainAbs := paper - previousPaper

	var gain, dayGain float64
	if cost != 0 {
		gain = gainAbs / cost
		dayGain = dayGainAbs / cost
	}

	value := paper
	if IsSold(f.Transactions) {
		value = paper + realised
	}

	return &RowGain{
		Price:         latest,
		PreviousPrice: previous,
		Value:         value,
		Gain:          roundGain(gain),
		GainAbs:       roundAbs(gainAbs),
		DayGain:       roundGain(dayGain),
		DayGainAbs:    roundAbs(dayGainAbs),
	}
}

// MinMaxGain returns the extremes of the computed gains, ignoring nil rows.
func (rg RowGains) MinMaxGain() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, g := range rg {
		if g == nil {
			continue
		}
		min = math.Min(min, g.Gain)
		max = math.Max(max, g.Gain)
	}
	return min, max
}

// FundMetadata is a fund's return annotated with its heat color.
type FundMetadata struct {
	RowGain
	Color Color `json:"color"`
}

// Metadata returns the gain record for one fund with its color, scaled so
// that the most extreme gain across all funds is the most saturated. Nil when
// the fund's gain could not be computed.
func (rg RowGains) Metadata(id Id) *FundMetadata {
	g, ok := rg[id]
	if !ok || g == nil {
		return nil
	}
	min, max := rg.MinMaxGain()
	return &FundMetadata{RowGain: *g, Color: gainColor(g.Gain, min, max)}
}

// fundsWithPrices keeps the funds that have any cache entry, provided the
// timeline has at least two samples.
func fundsWithPrices(funds []Fund, cache *PriceCache) []Fund {
	if len(cache.CacheTimes) < 2 {
		return nil
	}
	out := make([]Fund, 0, len(funds))
	for _, f := range funds {
		if _, ok := cache.Prices[f.ID]; ok {
			out = append(out, f)
		}
	}
	return out
}

// totalValueAt marks the whole portfolio to market at the given unix time,
// pricing each fund from its latest group.
func totalValueAt(funds []Fund, cache *PriceCache, maxUnix int64) float64 {
	var total float64
	for _, f := range funds {
		groups := cache.Prices[f.ID]
		if len(groups) == 0 {
			continue
		}
		last := groups[len(groups)-1]
		if len(last.Values) == 0 {
			continue
		}

		timeIndex := len(cache.CacheTimes) - 1
		for ; timeIndex >= 0; timeIndex-- {
			if cache.SampleTime(timeIndex) <= maxUnix {
				break
			}
		}

		i := timeIndex - last.StartIndex
		if i < 0 || i >= len(last.Values) {
			i = len(last.Values) - 1
		}
		price := last.Values[i] / last.RebaseRatioAt(i)

		var past []Transaction
		for _, t := range f.Transactions {
			if t.Date.Unix() <= maxUnix {
				past = append(past, t)
			}
		}
		total += price * TotalUnits(past, f.Splits)
	}
	return total
}

// totalCostBefore sums the net cost of all transactions strictly before the
// given unix time.
func totalCostBefore(funds []Fund, maxUnix int64) float64 {
	var total float64
	for _, f := range funds {
		var past []Transaction
		for _, t := range f.Transactions {
			if t.Date.Unix() < maxUnix {
				past = append(past, t)
			}
		}
		total += TotalCost(past)
	}
	return total
}

// PortfolioDayGainAbs returns the whole portfolio's day-over-day gain between
// the two latest cache samples, corrected for money flowing in or out between
// them. Zero when either day's value is unknown.
func PortfolioDayGainAbs(funds []Fund, cache *PriceCache) float64 {
	items := fundsWithPrices(funds, cache)
	latest, previous, ok := cache.LatestTimes()
	if !ok {
		return 0
	}
	valueLatest := totalValueAt(items, cache, latest)
	valuePrevious := totalValueAt(items, cache, previous)
	if valueLatest == 0 || valuePrevious == 0 {
		return 0
	}
	costDelta := totalCostBefore(items, latest) - totalCostBefore(items, previous)
	return valueLatest - valuePrevious - costDelta
}

// PortfolioDayGain is PortfolioDayGainAbs relative to the previous day's value.
func PortfolioDayGain(funds []Fund, cache *PriceCache) float64 {
	items := fundsWithPrices(funds, cache)
	latest, previous, ok := cache.LatestTimes()
	if !ok {
		return 0
	}
	valuePrevious := totalValueAt(items, cache, previous)
	if valuePrevious == 0 {
		return 0
	}
	valueLatest := totalValueAt(items, cache, latest)
	if valueLatest == 0 {
		return 0
	}
	costDelta := totalCostBefore(items, latest) - totalCostBefore(items, previous)
	return (valueLatest - valuePrevious - costDelta) / valuePrevious
}

// CachedValue is the headline summary of the whole portfolio at the latest
// scrape, with the age of that scrape as display text.
type CachedValue struct {
	Value      float64 `json:"value"`
	AgeText    string  `json:"ageText"`
	Gain       float64 `json:"gain"`
	GainAbs    float64 `json:"gainAbs"`
	DayGain    float64 `json:"dayGain"`
	DayGainAbs float64 `json:"dayGainAbs"`
}

// FundsCachedValue summarises all funds as of now: total paper value, overall
// gain against cost, whole portfolio day gain and the cache age.
func FundsCachedValue(funds []Fund, cache *PriceCache, now time.Time) CachedValue {
	today := date.FromTime(now)

	var paper, realised, cost float64
	for _, f := range funds {
		price := cache.PriceAsOf(f.ID, today)
		past := FilterPastTransactions(today, f.Transactions)
		paper += PaperValue(past, f.Splits, price)
		realised += RealisedValue(past)
		cost += BuyCost(past)
	}

	gainAbs := paper + realised - cost
	var gain float64
	if cost != 0 {
		gain = gainAbs / cost
	}

	return CachedValue{
		Value:      paper,
		AgeText:    CacheAgeText(cache.StartTime, cache.CacheTimes, now),
		Gain:       gain,
		GainAbs:    gainAbs,
		DayGain:    PortfolioDayGain(funds, cache),
		DayGainAbs: PortfolioDayGainAbs(funds, cache),
	}
}

// CacheAgeText describes how stale the latest price sample is.
func CacheAgeText(startTime int64, cacheTimes []int64, now time.Time) string {
	if len(cacheTimes) == 0 {
		return "no values"
	}
	age := now.Unix() - (startTime + cacheTimes[len(cacheTimes)-1])
	if age < 0 {
		return "in the future!"
	}
	return durationText(time.Duration(age)*time.Second) + " ago"
}

// durationText renders a duration using its largest unit only, rounded.
func durationText(d time.Duration) string {
	type unit struct {
		name    string
		seconds float64
	}
	units := []unit{
		{"year", 365.25 * 86400},
		{"month", 30.44 * 86400},
		{"week", 7 * 86400},
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
		{"second", 1},
	}
	secs := d.Seconds()
	for _, u := range units[:len(units)-1] {
		if secs >= u.seconds {
			n := int(math.Round(secs / u.seconds))
			return pluralise(n, u.name)
		}
	}
	return pluralise(int(math.Round(secs)), "second")
}

func pluralise(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
