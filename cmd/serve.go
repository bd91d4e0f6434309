package cmd

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/server"
	"github.com/stvnw/fundval/store"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the JSON HTTP API server" }
func (*serveCmd) Usage() string {
	return `fv serve [-port <port>]

  Runs the HTTP API server and, when a quote source is configured, the
  scheduled live quote refresh.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Port to listen on, overrides FUNDVAL_PORT")
}

func (c *serveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := server.LoadConfig()
	if err != nil {
		return fail(err)
	}
	if c.port != 0 {
		cfg.Port = c.port
	}
	log := server.NewLogger(cfg.LogLevel, cfg.Pretty)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	var feed *fundval.QuoteFeed
	if cfg.QuoteURL != "" {
		feed = fundval.NewQuoteFeed(cfg.QuoteURL, cfg.QuotePath)
	}

	srv := server.New(server.Options{
		Port:   cfg.Port,
		Log:    log,
		Store:  st,
		Quotes: feed,
	})

	if feed != nil {
		sched := server.NewScheduler(log)
		job := &server.QuoteRefreshJob{Store: st, Quotes: feed, Log: log}
		if err := sched.AddJob(cfg.RefreshSchedule, job); err != nil {
			return fail(err)
		}
		sched.Start()
		defer sched.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fail(err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fail(err)
		}
	}
	return subcommands.ExitSuccess
}
