package renderer

import (
	"fmt"
	"strings"

	"github.com/stvnw/fundval"
)

// PortfolioMarkdown renders the portfolio view as a markdown report: one
// valuation row per held fund with its deal summary, and the total.
func PortfolioMarkdown(items []fundval.PortfolioItem, on string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Portfolio as of %s\n\n", on)

	if len(items) == 0 {
		fmt.Fprintln(&b, "No priced holdings.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Fund | Value | Target | Bought | Avg Buy | Sold | Avg Sell | Fees+Taxes | PnL |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|---:|")

	var total, pnl float64
	for _, it := range items {
		m := it.Metadata
		fmt.Fprintf(&b, "| %s | %s | %.0f%% | %.4f | %s | %.4f | %s | %s | %s |\n",
			it.Name,
			fundval.FormatGBP(it.Value),
			it.AllocationTarget,
			m.UnitsBought,
			fundval.FormatGBP(m.AvgBuyPrice),
			m.UnitsSold,
			fundval.FormatGBP(m.AvgSellPrice),
			fundval.FormatGBP(m.Fees+m.Taxes),
			fundval.FormatGBP(m.PnL),
		)
		total += it.Value
		pnl += m.PnL
	}
	fmt.Fprintf(&b, "| **Total** | **%s** | | | | | | | **%s** |\n",
		fundval.FormatGBP(total), fundval.FormatGBP(pnl))

	return b.String()
}

// CashMarkdown renders a cash breakdown as a markdown report.
func CashMarkdown(cb fundval.CashBreakdown) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Cash\n\n")
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Cash at snapshot | %s |\n", fundval.FormatGBP(cb.Breakdown.CashAtSnapshot))
	fmt.Fprintf(&b, "| Invested since | %s |\n", fundval.FormatGBP(cb.Breakdown.InvestmentsSince))
	fmt.Fprintf(&b, "| Spent since | %s |\n", fundval.FormatGBP(cb.Breakdown.SpendingSince))
	fmt.Fprintf(&b, "| Stocks incl. cash | %s |\n", fundval.FormatGBP(cb.Breakdown.StocksIncludingCash))
	fmt.Fprintf(&b, "| Stock value | %s |\n", fundval.FormatGBP(cb.Breakdown.StockValue))
	fmt.Fprintf(&b, "| **Cash in bank** | **%s** |\n", fundval.FormatGBP(cb.CashInBank))
	fmt.Fprintf(&b, "| **Cash to invest** | **%s** |\n", fundval.FormatGBP(cb.CashToInvest))

	return b.String()
}
