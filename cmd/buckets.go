package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/date"
	"github.com/stvnw/fundval/renderer"
)

// bucketsCmd holds the flags for the 'buckets' subcommand.
type bucketsCmd struct {
	period string
	start  string
}

func (*bucketsCmd) Name() string     { return "buckets" }
func (*bucketsCmd) Synopsis() string { return "budget buckets against actual spend" }
func (*bucketsCmd) Usage() string {
	return `fv buckets [-period <period>] [-s <date>]

  Displays every budget bucket by category with expected against actual
  values, plus the overall budget health. Expected values scale to the
  number of months the reporting window touches.
`
}

func (c *bucketsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", date.Monthly.String(), "Reporting window (month, quarter, year)")
	f.StringVar(&c.start, "s", "", "Window start date, overrides -period")
}

func (c *bucketsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	today := date.Today()
	var window date.Range
	if c.start != "" {
		from, err := date.Parse(c.start)
		if err != nil {
			return usageError(err.Error())
		}
		window = date.Range{From: from, To: today}
	} else {
		period, err := date.ParsePeriod(c.period)
		if err != nil {
			return usageError(err.Error())
		}
		window = date.NewRange(today, period)
	}
	months := window.Months()
	if months < 1 {
		return usageError("window start must not be in the future")
	}

	st, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	buckets, err := st.Buckets(ctx)
	if err != nil {
		return fail(err)
	}
	investment, err := st.InvestmentBucket(ctx)
	if err != nil {
		return fail(err)
	}
	funds, _, err := loadState(ctx, st)
	if err != nil {
		return fail(err)
	}

	scaled := fundval.ScaleExpectedValues(buckets, months)
	display, err := fundval.MoveBucketRemainderToCatchAll(scaled)
	if err != nil {
		return fail(err)
	}

	invested := fundval.InvestmentsBetweenDates(funds, window.From, window.To)
	expected := fundval.ExpectedTotals(scaled, investment)
	actual := fundval.ActualTotals(display, invested)
	healthy, health := fundval.HealthStatus(expected, actual)

	printMarkdown(renderer.BucketsMarkdown(display, expected, actual, healthy, health))
	return subcommands.ExitSuccess
}
