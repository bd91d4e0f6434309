package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// updateCmd holds the flags for the 'update' subcommand.
type updateCmd struct{}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "fetch live quotes into the price cache" }
func (*updateCmd) Usage() string {
	return `fv update

  Fetches a live quote for every fund with a ticker in its name and appends
  the quotes to the stored price cache.
`
}

func (*updateCmd) SetFlags(_ *flag.FlagSet) {}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, cfg, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	n, err := refreshQuotes(ctx, st, cfg)
	if err != nil {
		return fail(err)
	}
	if n == 0 {
		fmt.Println("No funds carry a ticker, nothing to update")
		return subcommands.ExitSuccess
	}
	fmt.Printf("Merged %d live quotes into the price cache\n", n)
	return subcommands.ExitSuccess
}
