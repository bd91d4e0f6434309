// Package cmd implements the CLI application to track funds, budgets and
// available cash.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/server"
	"github.com/stvnw/fundval/store"
)

// Register the subcommands.
// A main package calls Register(), then Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&gainsCmd{}, "reports")
	c.Register(&portfolioCmd{}, "reports")
	c.Register(&cashCmd{}, "reports")
	c.Register(&bucketsCmd{}, "reports")
	c.Register(&chartCmd{}, "reports")

	c.Register(&updateCmd{}, "prices")

	c.Register(&importCmd{}, "data")
	c.Register(&exportCmd{}, "data")
	c.Register(&snapshotCmd{}, "data")

	c.Register(&serveCmd{}, "server")

	c.Register(&topicCmd{}, "documentation")
}

// CommandNames lists every registered subcommand, for shell completion.
func CommandNames() []string {
	return []string{
		"gains", "portfolio", "cash", "buckets", "chart",
		"update", "import", "export", "snapshot", "serve", "topic",
	}
}

// openStore opens the database named by the environment, creating it on
// first use.
func openStore() (*store.Store, *server.Config, error) {
	cfg, err := server.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database %q: %w", cfg.DatabasePath, err)
	}
	return st, cfg, nil
}

// loadState reads funds and the price cache, rebased against the funds'
// split histories.
func loadState(ctx context.Context, st *store.Store) ([]fundval.Fund, *fundval.PriceCache, error) {
	funds, err := st.Funds(ctx)
	if err != nil {
		return nil, nil, err
	}
	cache, err := st.PriceCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	return funds, cache.Rebase(funds), nil
}

// refreshQuotes pulls live quotes and folds them into the stored cache.
func refreshQuotes(ctx context.Context, st *store.Store, cfg *server.Config) (int, error) {
	if cfg.QuoteURL == "" {
		return 0, fmt.Errorf("no quote source configured, set FUNDVAL_QUOTE_URL")
	}
	funds, err := st.Funds(ctx)
	if err != nil {
		return 0, err
	}
	cache, err := st.PriceCache(ctx)
	if err != nil {
		return 0, err
	}

	feed := fundval.NewQuoteFeed(cfg.QuoteURL, cfg.QuotePath).Cached()
	quotes, fetched, err := feed.Fetch(funds)
	if err != nil {
		return 0, err
	}
	if len(quotes) == 0 {
		return 0, nil
	}
	if err := st.SavePriceCache(ctx, cache.MergeLiveQuotes(quotes, fetched)); err != nil {
		return 0, err
	}
	return len(quotes), nil
}

// printMarkdown renders a markdown report for the terminal.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func usageError(msg string) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	return subcommands.ExitUsageError
}
