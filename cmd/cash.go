package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/date"
	"github.com/stvnw/fundval/renderer"
)

// cashCmd holds the flags for the 'cash' subcommand.
type cashCmd struct {
	spending float64
}

func (*cashCmd) Name() string     { return "cash" }
func (*cashCmd) Synopsis() string { return "available cash from the last net worth snapshot" }
func (*cashCmd) Usage() string {
	return `fv cash [-spending <minor units>]

  Reconciles the last net worth snapshot with fund deals and spending since,
  and displays cash in bank and cash available to invest.
`
}

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.spending, "spending", 0, "Non-fund spending since the snapshot, in minor units")
}

func (c *cashCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	snap, ok, err := st.LatestSnapshot(ctx)
	if err != nil {
		return fail(err)
	}
	if !ok {
		return fail(fmt.Errorf("no net worth snapshot recorded, run 'fv snapshot' first"))
	}

	funds, cache, err := loadState(ctx, st)
	if err != nil {
		return fail(err)
	}

	cb := fundval.ComputeCashBreakdown(snap, funds, cache, c.spending, date.Today())
	printMarkdown(renderer.CashMarkdown(cb))
	return subcommands.ExitSuccess
}
