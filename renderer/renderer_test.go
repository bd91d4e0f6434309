package renderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/date"
)

// mustHaveHeading parses the report with goldmark and checks that it opens
// with the given level 1 heading, so reports stay valid markdown.
func mustHaveHeading(t *testing.T, report, heading string) {
	t.Helper()

	src := []byte(report)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	var first string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering && h.Level == 1 && first == "" {
			var b strings.Builder
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				if txt, ok := c.(*ast.Text); ok {
					b.Write(txt.Segment.Value(src))
				}
			}
			first = b.String()
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if first != heading {
		t.Fatalf("first heading = %q, want %q\n%s", first, heading, report)
	}
}

func TestGainsMarkdown(t *testing.T) {
	funds := []fundval.Fund{
		{ID: 1, Name: "Big Holding"},
		{ID: 2, Name: "Unpriced Holding"},
	}
	gains := fundval.RowGains{
		1: &fundval.RowGain{Price: 56.19, Value: 5843.76, Gain: 0.0628, GainAbs: 345, DayGain: -0.0008, DayGainAbs: -4},
		2: nil,
	}
	summary := fundval.CachedValue{Value: 5843.76, GainAbs: 345.2, AgeText: "2 hours ago"}

	report := GainsMarkdown(funds, gains, summary)
	mustHaveHeading(t, report, "Gains")

	if !strings.Contains(report, "£58.44") {
		t.Errorf("report lacks the total value:\n%s", report)
	}
	if !strings.Contains(report, "2 hours ago") {
		t.Errorf("report lacks the cache age:\n%s", report)
	}
	if !strings.Contains(report, "| Unpriced Holding | - |") {
		t.Errorf("report lacks the no-data row:\n%s", report)
	}

	// the priced fund sorts above the unpriced one
	if strings.Index(report, "Big Holding") > strings.Index(report, "Unpriced Holding") {
		t.Errorf("unpriced fund listed first:\n%s", report)
	}
}

func TestPortfolioMarkdown(t *testing.T) {
	items := []fundval.PortfolioItem{{
		ID:               1,
		Name:             "Big Holding",
		Value:            584376,
		AllocationTarget: 60,
		Metadata: fundval.PortfolioItemMetadata{
			UnitsBought: 104,
			AvgBuyPrice: 5239,
			Fees:        1500,
			Taxes:       3500,
			TotalCost:   549856,
			PnL:         34520,
		},
	}}

	report := PortfolioMarkdown(items, "2021-03-11")
	mustHaveHeading(t, report, "Portfolio as of 2021-03-11")

	if !strings.Contains(report, "£5,843.76") {
		t.Errorf("report lacks the fund value:\n%s", report)
	}
	if !strings.Contains(report, "£50.00") {
		t.Errorf("report lacks combined fees and taxes:\n%s", report)
	}
	if !strings.Contains(report, "**Total**") {
		t.Errorf("report lacks the total row:\n%s", report)
	}

	empty := PortfolioMarkdown(nil, "2021-03-11")
	if !strings.Contains(empty, "No priced holdings.") {
		t.Errorf("empty report = %q", empty)
	}
}

func TestCashMarkdown(t *testing.T) {
	report := CashMarkdown(fundval.CashBreakdown{
		CashInBank:   329000,
		CashToInvest: 369000,
		Breakdown: fundval.CashComponents{
			CashAtSnapshot:   500000,
			InvestmentsSince: 51000,
			SpendingSince:    120000,
		},
	})
	mustHaveHeading(t, report, "Cash")

	if !strings.Contains(report, "£3,290.00") || !strings.Contains(report, "£3,690.00") {
		t.Errorf("report lacks derived cash values:\n%s", report)
	}
}

func TestBucketsMarkdown(t *testing.T) {
	buckets := []fundval.Bucket{
		{ID: 1, Page: fundval.PageFood, FilterCategory: "groceries", ExpectedValue: 30000, ActualValue: 22000},
		{ID: 2, Page: fundval.PageFood, ExpectedValue: 10000, ActualValue: 8000},
	}
	expected := fundval.ExpectedTotals(buckets, fundval.InvestmentBucket{ExpectedValue: 50000})
	actual := fundval.ActualTotals(buckets, 40000)

	report := BucketsMarkdown(buckets, expected, actual, false, "Overspent by £3.00")
	mustHaveHeading(t, report, "Buckets")

	if !strings.Contains(report, "**Overspent by £3.00**") {
		t.Errorf("report lacks the health verdict:\n%s", report)
	}
	if !strings.Contains(report, "## Food") {
		t.Errorf("report lacks the food section:\n%s", report)
	}
	if !strings.Contains(report, "(everything else)") {
		t.Errorf("report lacks the catch-all row:\n%s", report)
	}
	if !strings.Contains(report, "## Funds") {
		t.Errorf("report lacks the funds section:\n%s", report)
	}

	healthy := BucketsMarkdown(buckets, expected, actual, true, "")
	if !strings.Contains(healthy, "Budget is healthy.") {
		t.Errorf("healthy report lacks the verdict:\n%s", healthy)
	}
}

func TestRenderChart(t *testing.T) {
	start := date.MustParse("2021-03-01").Unix()
	lines := []fundval.ChartLine{
		{
			ID:    fundval.OverallID,
			Name:  "Overall",
			Color: fundval.Color{},
			Data:  []fundval.Point{{Time: 0, Value: 100}, {Time: 86400, Value: 110}, {Time: 2 * 86400, Value: 108}},
		},
		{
			ID:    1,
			Name:  "Big Holding",
			Color: fundval.Color{R: 99, G: 229, B: 47},
			Data:  []fundval.Point{{Time: 0, Value: 100}, {Time: 2 * 86400, Value: 108}},
		},
		{
			ID:   2,
			Name: "Single Point",
			Data: []fundval.Point{{Time: 0, Value: 5}}, // too short to plot
		},
	}

	png, err := RenderChart(lines, start, fundval.ModeValue)
	if err != nil {
		t.Fatalf("RenderChart() unexpected error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("output is not a PNG, starts with %q", png[:8])
	}
}

func TestRenderChart_NoLines(t *testing.T) {
	if _, err := RenderChart(nil, 0, fundval.ModeROI); err == nil {
		t.Error("RenderChart(no lines) error = nil, want error")
	}
}
