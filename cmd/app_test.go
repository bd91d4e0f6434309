package cmd

import (
	"flag"
	"strings"
	"testing"

	"github.com/google/subcommands"
)

func allCommands() []subcommands.Command {
	return []subcommands.Command{
		&gainsCmd{}, &portfolioCmd{}, &cashCmd{}, &bucketsCmd{}, &chartCmd{},
		&updateCmd{}, &importCmd{}, &exportCmd{}, &snapshotCmd{}, &serveCmd{},
		&topicCmd{},
	}
}

func TestCommandNames(t *testing.T) {
	names := CommandNames()
	cmds := allCommands()
	if len(names) != len(cmds) {
		t.Fatalf("CommandNames() lists %d commands, %d registered", len(names), len(cmds))
	}
	listed := make(map[string]bool, len(names))
	for _, n := range names {
		listed[n] = true
	}
	for _, c := range cmds {
		if !listed[c.Name()] {
			t.Errorf("command %q missing from CommandNames()", c.Name())
		}
	}
}

func TestUsageNamesTheCommand(t *testing.T) {
	for _, c := range allCommands() {
		if !strings.Contains(c.Usage(), "fv "+c.Name()) {
			t.Errorf("%s usage does not show its invocation:\n%s", c.Name(), c.Usage())
		}
		if c.Synopsis() == "" {
			t.Errorf("%s has no synopsis", c.Name())
		}
	}
}

func TestChartFlagDefaults(t *testing.T) {
	c := &chartCmd{}
	f := flag.NewFlagSet("chart", flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(nil); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.mode != "roi" {
		t.Errorf("mode default = %q, want roi", c.mode)
	}
	if c.output != "chart.png" {
		t.Errorf("output default = %q, want chart.png", c.output)
	}
	if c.viewSold {
		t.Error("viewSold default = true, want false")
	}
}
