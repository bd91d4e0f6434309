package fundval

import (
	"fmt"
	"math"
	"strings"
)

// Return is the state of one fund at one price sample: the raw and rebased
// price, the split-adjusted units held, and the cumulative buy cost and
// realised value of the transactions known at that sample.
type Return struct {
	Price        float64
	PriceRebased float64
	Units        float64
	Cost         float64
	Realised     float64
}

// ReturnGroup is a contiguous run of Returns starting at a shared timeline
// index. A fund sold off and re-bought has several disjoint groups.
type ReturnGroup struct {
	StartIndex int
	Values     []Return
}

// FundsWithReturns maps each fund to its segmented return history.
type FundsWithReturns map[Id][]ReturnGroup

// LineGroup is a contiguous run of plottable values on the shared timeline.
type LineGroup struct {
	StartIndex int
	Values     []float64
}

// Mode selects the quantity a chart line plots.
type Mode int

const (
	ModeROI Mode = iota
	ModeValue
	ModeStacked
	ModeAllocation
	ModePrice
	ModePriceNormalised
)

// Modes lists every chart mode, in display order.
var Modes = []Mode{ModeROI, ModeValue, ModeStacked, ModeAllocation, ModePrice, ModePriceNormalised}

func (m Mode) String() string {
	switch m {
	case ModeROI:
		return "roi"
	case ModeValue:
		return "value"
	case ModeStacked:
		return "stacked"
	case ModeAllocation:
		return "allocation"
	case ModePrice:
		return "price"
	case ModePriceNormalised:
		return "price-normalised"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a mode name as rendered by String.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return ModeROI, fmt.Errorf("unknown chart mode %q", s)
}

// MarshalText renders the mode name, so JSON maps keyed by Mode use names.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// OverallID is the synthetic id of the aggregate line across all funds.
const OverallID Id = -1

func returnValue(r Return) float64         { return r.Units * r.PriceRebased }
func returnRealisedValue(r Return) float64 { return r.Units*r.PriceRebased + r.Realised }
func returnCost(r Return) float64          { return r.Cost }

// roi leaves the division unguarded: a zero cost yields NaN or Inf, which the
// single-line mapper filters out as an undefined period.
func roi(cost, value float64) float64 {
	if cost == 0 {
		return math.NaN()
	}
	return 100 * (value - cost) / cost
}

func roundROI(v float64) float64 { return math.Round(100*v) / 100 }

// returnMapper projects one Return to a plottable value. timeIndex is the
// position on the shared timeline.
type returnMapper func(r Return, timeIndex int) float64

// atDateReducer folds all funds' values at one time index into an
// accumulator, so that multi-pass aggregates (cost, then ROI over that cost)
// share one skeleton.
type atDateReducer func(funds [][]ReturnGroup, prev float64, timeIndex int) float64

// reduceReturnsAtDate sums mapper over the group of each fund that covers the
// time index, then lets composer fold the sum into the previous pass's value.
func reduceReturnsAtDate(mapper returnMapper, composer func(prev, next float64) float64) atDateReducer {
	if composer == nil {
		composer = func(_, next float64) float64 { return next }
	}
	return func(funds [][]ReturnGroup, prev float64, timeIndex int) float64 {
		var sum float64
		for _, groups := range funds {
			for _, g := range groups {
				if g.StartIndex <= timeIndex && timeIndex-g.StartIndex < len(g.Values) {
					sum += mapper(g.Values[timeIndex-g.StartIndex], timeIndex)
					break
				}
			}
		}
		return composer(prev, sum)
	}
}

// extendCosts pads every fund's last group forward to the longest fund's
// length, holding its last cost and realised value flat with zero units. A
// fund that stopped trading keeps contributing its final state to every
// subsequent overall sample instead of dropping out. Inputs are not mutated.
func extendCosts(funds [][]ReturnGroup) [][]ReturnGroup {
	maxLength := 0
	for _, groups := range funds {
		for _, g := range groups {
			if end := g.StartIndex + len(g.Values); end > maxLength {
				maxLength = end
			}
		}
	}

	out := make([][]ReturnGroup, len(funds))
	for fi, groups := range funds {
		if len(groups) == 0 {
			out[fi] = groups
			continue
		}
		last := groups[len(groups)-1]
		if len(last.Values) == 0 {
			out[fi] = groups
			continue
		}
		final := last.Values[len(last.Values)-1]
		hold := Return{Cost: final.Cost, Realised: final.Realised}

		padded := ReturnGroup{StartIndex: last.StartIndex}
		padded.Values = make([]Return, 0, maxLength-last.StartIndex)
		padded.Values = append(padded.Values, last.Values...)
		for len(padded.Values) < maxLength-last.StartIndex {
			padded.Values = append(padded.Values, hold)
		}

		extended := make([]ReturnGroup, len(groups))
		copy(extended, groups[:len(groups)-1])
		extended[len(groups)-1] = padded
		out[fi] = extended
	}
	return out
}

// reduceOverallLine runs the reducer passes over every time index of the
// extended funds and applies a final composer to each value. The overall line
// is always a single group at index 0; with no data at all it is one empty
// group, not an absent one.
func reduceOverallLine(fr FundsWithReturns, reducers []atDateReducer, composer func(float64) float64) []LineGroup {
	funds := make([][]ReturnGroup, 0, len(fr))
	for _, groups := range fr {
		funds = append(funds, groups)
	}
	funds = extendCosts(funds)

	groupLength := 0
	haveGroups := false
	for _, groups := range funds {
		for _, g := range groups {
			haveGroups = true
			if end := g.StartIndex + len(g.Values); end > groupLength {
				groupLength = end
			}
		}
	}
	if !haveGroups {
		return []LineGroup{{StartIndex: 0, Values: []float64{}}}
	}

	values := make([]float64, groupLength)
	for _, reducer := range reducers {
		for ti := range values {
			values[ti] = reducer(funds, values[ti], ti)
		}
	}
	if composer != nil {
		for i, v := range values {
			values[i] = composer(v)
		}
	}
	return []LineGroup{{StartIndex: 0, Values: values}}
}

// mapSingleLine projects one fund's groups through a mapper, dropping NaN
// values. A NaN prefix marks an undefined period, so the group's start index
// moves forward past it.
func mapSingleLine(groups []ReturnGroup, mapper returnMapper) []LineGroup {
	out := make([]LineGroup, len(groups))
	for gi, g := range groups {
		all := make([]float64, len(g.Values))
		for i, r := range g.Values {
			all[i] = mapper(r, g.StartIndex+i)
		}

		firstDefined := 0
		for firstDefined < len(all) && math.IsNaN(all[firstDefined]) {
			firstDefined++
		}
		if firstDefined == len(all) {
			firstDefined = 0
		}

		defined := make([]float64, 0, len(all))
		for _, v := range all {
			if !math.IsNaN(v) {
				defined = append(defined, v)
			}
		}
		out[gi] = LineGroup{StartIndex: g.StartIndex + firstDefined, Values: defined}
	}
	return out
}

// OverallAbsolute sums every fund's value at each time index.
func OverallAbsolute(fr FundsWithReturns) []LineGroup {
	return reduceOverallLine(fr, []atDateReducer{
		reduceReturnsAtDate(func(r Return, _ int) float64 { return returnValue(r) }, nil),
	}, math.Round)
}

// OverallROI computes the aggregate return at each time index: first a pass
// summing cumulative cost, then a pass turning the summed realisable value
// into a percentage of that cost. Zero cost resolves to 0.
func OverallROI(fr FundsWithReturns) []LineGroup {
	reduceCostPass := reduceReturnsAtDate(func(r Return, _ int) float64 { return returnCost(r) }, nil)
	reduceROIPass := reduceReturnsAtDate(
		func(r Return, _ int) float64 { return returnRealisedValue(r) },
		func(cost, value float64) float64 {
			if cost == 0 {
				return 0
			}
			return 100 * (value - cost) / cost
		},
	)
	return reduceOverallLine(fr, []atDateReducer{reduceCostPass, reduceROIPass}, roundROI)
}

// FundLineAbsolute plots a fund's paper value per sample.
func FundLineAbsolute(fr FundsWithReturns, id Id) []LineGroup {
	return mapSingleLine(fr[id], func(r Return, _ int) float64 { return returnValue(r) })
}

// FundLineROI plots each group's return against that group's own cost
// baseline. Groups are independent: re-buying after a full sell resets the
// cost basis, and mixing groups would corrupt the new holding period's ROI.
func FundLineROI(fr FundsWithReturns, id Id) []LineGroup {
	return mapSingleLine(fr[id], func(r Return, _ int) float64 {
		return roundROI(roi(returnCost(r), returnRealisedValue(r)))
	})
}

// FundLinePrice plots the rebased price.
func FundLinePrice(fr FundsWithReturns, id Id) []LineGroup {
	return mapSingleLine(fr[id], func(r Return, _ int) float64 { return r.PriceRebased })
}

// FundLinePriceNormalised rescales a fund's price history so its very first
// sample is 100, letting funds of any share price share one comparison chart.
// A zero opening price falls back to the first non-zero sample; all-zero
// prices plot as zeros.
func FundLinePriceNormalised(fr FundsWithReturns, id Id) []LineGroup {
	groups := fr[id]

	var base float64
	if len(groups) > 0 && len(groups[0].Values) > 0 {
		base = groups[0].Values[0].PriceRebased
	}
	if base == 0 {
	search:
		for _, g := range groups {
			for _, r := range g.Values {
				if r.PriceRebased != 0 {
					base = r.PriceRebased
					break search
				}
			}
		}
	}

	out := make([]LineGroup, len(groups))
	for gi, g := range groups {
		values := make([]float64, len(g.Values))
		for i, r := range g.Values {
			if base != 0 {
				values[i] = r.PriceRebased * 100 / base
			}
		}
		out[gi] = LineGroup{StartIndex: g.StartIndex, Values: values}
	}
	return out
}

// FundLineAllocation plots a fund's share of the whole portfolio's value at
// each sample. Samples where the portfolio total is zero are undefined and
// dropped.
func FundLineAllocation(fr FundsWithReturns, id Id) []LineGroup {
	totalGroups := reduceOverallLine(fr, []atDateReducer{
		reduceReturnsAtDate(func(r Return, _ int) float64 { return returnValue(r) }, nil),
	}, nil)

	var totals []float64
	for _, g := range totalGroups {
		for len(totals) < g.StartIndex {
			totals = append(totals, 0)
		}
		totals = append(totals, g.Values...)
	}

	return mapSingleLine(fr[id], func(r Return, timeIndex int) float64 {
		if timeIndex >= len(totals) || totals[timeIndex] == 0 {
			return math.NaN()
		}
		return returnValue(r) / totals[timeIndex]
	})
}

// OverallLine resolves the aggregate line for a mode. Modes without a defined
// aggregation (raw prices are not summable) yield no groups.
func OverallLine(fr FundsWithReturns, mode Mode) []LineGroup {
	switch mode {
	case ModeValue, ModeStacked:
		return OverallAbsolute(fr)
	case ModeAllocation:
		groups := OverallAbsolute(fr)
		for gi, g := range groups {
			ones := make([]float64, len(g.Values))
			for i := range ones {
				ones[i] = 1
			}
			groups[gi] = LineGroup{StartIndex: g.StartIndex, Values: ones}
		}
		return groups
	case ModeROI:
		return OverallROI(fr)
	default:
		return nil
	}
}

// FundLine resolves a single fund's line for a mode.
func FundLine(fr FundsWithReturns, mode Mode, id Id) []LineGroup {
	switch mode {
	case ModeValue, ModeStacked:
		return FundLineAbsolute(fr, id)
	case ModeAllocation:
		return FundLineAllocation(fr, id)
	case ModeROI:
		return FundLineROI(fr, id)
	case ModePrice:
		return FundLinePrice(fr, id)
	case ModePriceNormalised:
		return FundLinePriceNormalised(fr, id)
	default:
		return nil
	}
}

// Point is one plotted sample: unix time and value.
type Point struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// FundLineProcessed resolves mode and id (OverallID for the aggregate line)
// and zips each group's values with their cache times into point runs. An
// overall line extended past the recorded timeline carries the last cache
// time rather than indexing out of range.
func FundLineProcessed(fr FundsWithReturns, cacheTimes []int64, mode Mode, id Id) [][]Point {
	var groups []LineGroup
	if id == OverallID {
		groups = OverallLine(fr, mode)
	} else {
		groups = FundLine(fr, mode, id)
	}

	out := make([][]Point, len(groups))
	for gi, g := range groups {
		points := make([]Point, len(g.Values))
		for i, v := range g.Values {
			ti := g.StartIndex + i
			if ti >= len(cacheTimes) {
				ti = len(cacheTimes) - 1
			}
			var t int64
			if ti >= 0 {
				t = cacheTimes[ti]
			}
			points[i] = Point{Time: t, Value: v}
		}
		out[gi] = points
	}
	return out
}
