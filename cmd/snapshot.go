package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/date"
)

// snapshotCmd holds the flags for the 'snapshot' subcommand.
type snapshotCmd struct {
	on     string
	cash   float64
	stocks float64
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "record a net worth snapshot" }
func (*snapshotCmd) Usage() string {
	return `fv snapshot -cash <minor units> -stocks <minor units> [-d <date>]

  Records easy access cash and the stocks aggregate for a day. The cash
  report reconciles against the most recent snapshot.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "Snapshot date")
	f.Float64Var(&c.cash, "cash", 0, "Easy access cash, in minor units")
	f.Float64Var(&c.stocks, "stocks", 0, "Stocks aggregate including platform cash, in minor units")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.on)
	if err != nil {
		return usageError(err.Error())
	}

	st, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	snap := fundval.NetWorthSnapshot{Date: on, CashEasyAccess: c.cash, Stocks: c.stocks}
	if err := st.AddSnapshot(ctx, snap); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded snapshot for %s\n", on)
	return subcommands.ExitSuccess
}
