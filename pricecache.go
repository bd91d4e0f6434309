package fundval

import (
	"fmt"
	"slices"

	"github.com/stvnw/fundval/date"
)

// PriceGroup is a contiguous run of price samples for one fund, starting at
// CacheTimes[StartIndex]. Multiple groups per fund allow gaps, for example a
// fund sold off and re-bought, or added after scraping began.
type PriceGroup struct {
	StartIndex       int       `json:"startIndex"`
	Values           []float64 `json:"values"`
	RebasePriceRatio []float64 `json:"rebasePriceRatio,omitempty"`
}

// RebaseRatioAt returns the cumulative split ratio for sample i, or 1 when
// the group carries no ratios.
func (g PriceGroup) RebaseRatioAt(i int) float64 {
	if i < 0 || i >= len(g.RebasePriceRatio) {
		return 1
	}
	return g.RebasePriceRatio[i]
}

// RebasedValues returns the group's prices converted to current share terms.
func (g PriceGroup) RebasedValues() []float64 {
	out := make([]float64, len(g.Values))
	for i, v := range g.Values {
		out[i] = v / g.RebaseRatioAt(i)
	}
	return out
}

// PriceCache is the scraped price history shared by all funds. CacheTimes are
// offsets in seconds from StartTime, one per historical scrape point.
type PriceCache struct {
	StartTime  int64              `json:"startTime"`
	CacheTimes []int64            `json:"cacheTimes"`
	Prices     map[Id][]PriceGroup `json:"prices"`
}

// SampleTime returns the unix time of sample i.
func (pc *PriceCache) SampleTime(i int) int64 { return pc.StartTime + pc.CacheTimes[i] }

// LatestTimes returns the unix times of the two most recent samples. With a
// single sample both are that sample.
func (pc *PriceCache) LatestTimes() (latest, previous int64, ok bool) {
	n := len(pc.CacheTimes)
	if n == 0 {
		return 0, 0, false
	}
	latest = pc.SampleTime(n - 1)
	previous = latest
	if n > 1 {
		previous = pc.SampleTime(n - 2)
	}
	return latest, previous, true
}

// Validate rejects caches that breach the upstream contract: cache times must
// be non-decreasing and every group must fit inside the shared timeline.
// Expected missing data (no groups, empty values) is not an error.
func (pc *PriceCache) Validate() error {
	for i := 1; i < len(pc.CacheTimes); i++ {
		if pc.CacheTimes[i] < pc.CacheTimes[i-1] {
			return fmt.Errorf("price cache: cacheTimes not monotonic at %d: %d < %d", i, pc.CacheTimes[i], pc.CacheTimes[i-1])
		}
	}
	for id, groups := range pc.Prices {
		for gi, g := range groups {
			if g.StartIndex < 0 {
				return fmt.Errorf("price cache: fund %d group %d: negative startIndex %d", id, gi, g.StartIndex)
			}
			if g.StartIndex+len(g.Values) > len(pc.CacheTimes) {
				return fmt.Errorf("price cache: fund %d group %d: %d values at %d exceed %d cache times",
					id, gi, len(g.Values), g.StartIndex, len(pc.CacheTimes))
			}
			if g.RebasePriceRatio != nil && len(g.RebasePriceRatio) != len(g.Values) {
				return fmt.Errorf("price cache: fund %d group %d: %d rebase ratios for %d values",
					id, gi, len(g.RebasePriceRatio), len(g.Values))
			}
		}
	}
	return nil
}

// splitRatioAt returns the cumulative ratio of the splits strictly after the
// given unix time. A raw price scraped at that time divided by this ratio is
// expressed in current share terms.
func splitRatioAt(splits []StockSplit, unix int64) float64 {
	product := 1.0
	for _, s := range splits {
		if s.Date.Unix() > unix {
			product *= s.Ratio
		}
	}
	return product
}

// Rebase returns a copy of the cache with RebasePriceRatio filled in for
// every sample of every fund, from that fund's split history. The receiver is
// left untouched.
func (pc *PriceCache) Rebase(funds []Fund) *PriceCache {
	splitsByID := make(map[Id][]StockSplit, len(funds))
	for _, f := range funds {
		splitsByID[f.ID] = f.Splits
	}

	out := &PriceCache{
		StartTime:  pc.StartTime,
		CacheTimes: slices.Clone(pc.CacheTimes),
		Prices:     make(map[Id][]PriceGroup, len(pc.Prices)),
	}
	for id, groups := range pc.Prices {
		splits := splitsByID[id]
		rebased := make([]PriceGroup, len(groups))
		for gi, g := range groups {
			ratios := make([]float64, len(g.Values))
			for i := range g.Values {
				ratios[i] = splitRatioAt(splits, pc.SampleTime(g.StartIndex+i))
			}
			rebased[gi] = PriceGroup{
				StartIndex:       g.StartIndex,
				Values:           slices.Clone(g.Values),
				RebasePriceRatio: ratios,
			}
		}
		out.Prices[id] = rebased
	}
	return out
}

// MergeLiveQuotes returns a copy of the cache extended with one synthetic
// sample holding the given real-time quotes. The quoted price is in current
// share terms already, so its rebase ratio is 1. Funds without a quote keep
// their groups unchanged; a quoted fund with no groups gets a fresh one.
func (pc *PriceCache) MergeLiveQuotes(quotes map[Id]float64, fetched int64) *PriceCache {
	out := &PriceCache{
		StartTime:  pc.StartTime,
		CacheTimes: append(slices.Clone(pc.CacheTimes), fetched-pc.StartTime),
		Prices:     make(map[Id][]PriceGroup, len(pc.Prices)),
	}
	newIndex := len(pc.CacheTimes)

	for id, groups := range pc.Prices {
		out.Prices[id] = slices.Clone(groups)
	}
	for id, price := range quotes {
		groups := slices.Clone(out.Prices[id])
		if len(groups) == 0 {
			out.Prices[id] = []PriceGroup{{
				StartIndex:       newIndex,
				Values:           []float64{price},
				RebasePriceRatio: []float64{1},
			}}
			continue
		}
		last := groups[len(groups)-1]
		// a group straight off the wire carries no ratios yet; pad so the
		// appended quote keeps ratios and values aligned
		ratios := slices.Clone(last.RebasePriceRatio)
		for len(ratios) < len(last.Values) {
			ratios = append(ratios, 1)
		}
		extended := PriceGroup{
			StartIndex:       last.StartIndex,
			Values:           append(slices.Clone(last.Values), price),
			RebasePriceRatio: append(ratios, 1),
		}
		groups[len(groups)-1] = extended
		out.Prices[id] = groups
	}
	return out
}

// PriceAsOf returns the most recent rebased price for a fund at or before
// the given time, or 0 when no sample qualifies.
func (pc *PriceCache) PriceAsOf(id Id, on date.Date) float64 {
	max := pc.priceIndexMax(on)
	groups := pc.Prices[id]
	for gi := len(groups) - 1; gi >= 0; gi-- {
		g := groups[gi]
		n := max - g.StartIndex
		if n > len(g.Values) {
			n = len(g.Values)
		}
		if n <= 0 {
			continue
		}
		if price := g.Values[n-1] / g.RebaseRatioAt(n-1); price != 0 {
			return price
		}
	}
	return 0
}

// priceIndexMax returns one past the index of the last sample at or before
// the given day's end.
func (pc *PriceCache) priceIndexMax(on date.Date) int {
	limit := on.Add(1).Unix() // exclusive end of day
	for i := len(pc.CacheTimes) - 1; i >= 0; i-- {
		if pc.SampleTime(i) < limit {
			return i + 1
		}
	}
	return 0
}
