package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/stvnw/fundval"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace all stored funds from a JSONL file" }
func (*importCmd) Usage() string {
	return `fv import -f <funds.jsonl>

  Reads funds in JSONL form, one fund per line, and replaces the database
  contents with them.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "JSONL file to import")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		return usageError("-f is required")
	}
	funds, err := fundval.LoadFunds(c.file)
	if err != nil {
		return fail(err)
	}

	st, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	if err := st.ImportFunds(ctx, funds); err != nil {
		return fail(err)
	}
	fmt.Printf("Imported %d funds from %s\n", len(funds), c.file)
	return subcommands.ExitSuccess
}

// exportCmd holds the flags for the 'export' subcommand.
type exportCmd struct {
	file string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write all stored funds as JSONL" }
func (*exportCmd) Usage() string {
	return `fv export [-f <funds.jsonl>]

  Writes every stored fund in JSONL form, one fund per line, to the given
  file or to stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Destination file, stdout when empty")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, _, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	funds, err := st.Funds(ctx)
	if err != nil {
		return fail(err)
	}

	if c.file == "" {
		if err := fundval.WriteFunds(os.Stdout, funds); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}
	if err := fundval.SaveFunds(c.file, funds); err != nil {
		return fail(err)
	}
	fmt.Printf("Exported %d funds to %s\n", len(funds), c.file)
	return subcommands.ExitSuccess
}
