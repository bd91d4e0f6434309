package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/stvnw/fundval"
)

// BucketsMarkdown renders the reconciled budget as a markdown report, one
// section per category, with expected versus actual totals and the health
// verdict.
func BucketsMarkdown(buckets []fundval.Bucket, expected, actual fundval.BudgetTotals, healthy bool, health string) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Buckets\n\n")
	if healthy {
		fmt.Fprint(&b, "Budget is healthy.\n\n")
	} else {
		fmt.Fprintf(&b, "**%s**\n\n", health)
	}

	for _, page := range fundval.AnalysisPages {
		ConditionalBlock(&b, func(w io.Writer) bool {
			fmt.Fprintf(w, "## %s\n\n", titleCase(page.String()))
			fmt.Fprintln(w, "| Bucket | Expected | Actual |")
			fmt.Fprintln(w, "|:---|---:|---:|")
			rows := 0
			for _, bucket := range buckets {
				if bucket.Page != page {
					continue
				}
				name := bucket.FilterCategory
				if bucket.IsCatchAll() {
					name = "(everything else)"
				}
				fmt.Fprintf(w, "| %s | %s | %s |\n",
					name, fundval.FormatGBP(bucket.ExpectedValue), fundval.FormatGBP(bucket.ActualValue))
				rows++
			}
			fmt.Fprintf(w, "| **Total** | **%s** | **%s** |\n\n",
				fundval.FormatGBP(expected.Pages[page]), fundval.FormatGBP(actual.Pages[page]))
			return rows > 0
		})
	}

	fmt.Fprint(&b, "## Funds\n\n")
	fmt.Fprintln(&b, "| | Expected | Actual |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	fmt.Fprintf(&b, "| Invested | %s | %s |\n",
		fundval.FormatGBP(expected.Funds), fundval.FormatGBP(actual.Funds))

	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
