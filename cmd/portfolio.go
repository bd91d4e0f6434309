package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/date"
	"github.com/stvnw/fundval/renderer"
)

// portfolioCmd holds the flags for the 'portfolio' subcommand.
type portfolioCmd struct {
	on string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "holdings valued as of a day" }
func (*portfolioCmd) Usage() string {
	return `fv portfolio [-d <date>]

  Displays every priced holding with its deal history summary and PnL.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "Valuation date")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.on)
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

	items := fundval.Portfolio(funds, cache, on)
	printMarkdown(renderer.PortfolioMarkdown(items, on.String()))
	return subcommands.ExitSuccess
}
