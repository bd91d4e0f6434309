package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/date"
	"github.com/stvnw/fundval/renderer"
)

// chartCmd holds the flags for the 'chart' subcommand.
type chartCmd struct {
	mode     string
	output   string
	viewSold bool
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render fund lines to a PNG chart" }
func (*chartCmd) Usage() string {
	return `fv chart [-mode <mode>] [-o <file>] [-sold]

  Renders every fund's line for the chosen mode (roi, value, stacked,
  allocation, price, price-normalised) as a PNG image.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.mode, "mode", fundval.ModeROI.String(), "Chart mode")
	f.StringVar(&c.output, "o", "chart.png", "Output PNG file")
	f.BoolVar(&c.viewSold, "sold", false, "Include sold funds")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mode, err := fundval.ParseMode(c.mode)
	if err != nil {
		return usageError(err.Error())
	}

	st, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	funds, cache, err := loadState(ctx, st)
	if err != nil {
		return fail(err)
	}

	lines := fundval.FundLines(funds, cache, date.Today(), c.viewSold)[mode]
	png, err := renderer.RenderChart(lines, cache.StartTime, mode)
	if err != nil {
		return fail(err)
	}

	if err := os.WriteFile(c.output, png, 0644); err != nil {
		return fail(err)
	}
	fmt.Printf("Wrote %s chart to %s\n", mode, c.output)
	return subcommands.ExitSuccess
}
