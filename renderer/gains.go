package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stvnw/fundval"
)

// GainsMarkdown renders every fund's computed return as a markdown report,
// headlined by the whole portfolio summary. Funds without enough data to
// compute a return are listed without figures.
func GainsMarkdown(funds []fundval.Fund, gains fundval.RowGains, summary fundval.CachedValue) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Gains\n\n")
	fmt.Fprintf(&b, "Total value: %s (%s), priced %s\n\n",
		fundval.FormatGBP(summary.Value), fundval.FormatGBP(summary.GainAbs), summary.AgeText)
	fmt.Fprintf(&b, "Day gain: %s (%+.2f%%)\n\n", fundval.FormatGBP(summary.DayGainAbs), 100*summary.DayGain)

	fmt.Fprintln(&b, "| Fund | Price | Value | Gain | Gain % | Day Gain | Day % |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|")

	ordered := make([]fundval.Fund, len(funds))
	copy(ordered, funds)
	sort.SliceStable(ordered, func(i, j int) bool {
		gi, gj := gains[ordered[i].ID], gains[ordered[j].ID]
		if (gi == nil) != (gj == nil) {
			return gj == nil
		}
		if gi == nil {
			return ordered[i].ID < ordered[j].ID
		}
		return gi.Value > gj.Value
	})

	for _, f := range ordered {
		g := gains[f.ID]
		if g == nil {
			fmt.Fprintf(&b, "| %s | - | - | - | - | - | - |\n", f.Name)
			continue
		}
		fmt.Fprintf(&b, "| %s | %.2fp | %s | %s | %+.2f%% | %s | %+.2f%% |\n",
			f.Name,
			g.Price,
			fundval.FormatGBP(g.Value),
			fundval.FormatGBP(g.GainAbs),
			100*g.Gain,
			fundval.FormatGBP(g.DayGainAbs),
			100*g.DayGain,
		)
	}

	return b.String()
}
