package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/renderer"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	update bool
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "per fund gain analysis against cached prices" }
func (*gainsCmd) Usage() string {
	return `fv gains [-u]

  Displays the cached portfolio value and each fund's paper and day gains.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.update, "u", false, "Fetch live quotes before reporting")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, cfg, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	if c.update {
		if _, err := refreshQuotes(ctx, st, cfg); err != nil {
			fmt.Println("warning, live quote refresh failed:", err)
		}
	}

	funds, cache, err := loadState(ctx, st)
	if err != nil {
		return fail(err)
	}

	gains := fundval.ComputeRowGains(funds, cache)
	summary := fundval.FundsCachedValue(funds, cache, time.Now())
	printMarkdown(renderer.GainsMarkdown(funds, gains, summary))
	return subcommands.ExitSuccess
}
