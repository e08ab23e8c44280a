package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dkoosis/tcr/internal/config"
	"github.com/dkoosis/tcr/internal/pipeline"
	"github.com/dkoosis/tcr/internal/todo"
)

func (a *app) runCmd() *cobra.Command {
	var serveApp bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect unit and e2e results, then report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, map[string]string{
				"catalog":    "catalog",
				"report-out": "report_out",
				"format":     "format",
				"strict":     "strict",
				"history":    "history",
				"unit-out":   "unit.out",
				"packages":   "unit.packages",
				"e2e-out":    "e2e.out",
				"base-url":   "e2e.base_url",
				"headless":   "e2e.headless",
			}); err != nil {
				return err
			}
			return a.runPipeline(cmd.Context(), serveApp)
		},
	}
	f := cmd.Flags()
	f.String("catalog", config.DefaultCatalog, "YAML test catalog")
	f.String("report-out", config.DefaultReportOut, "JSON report file")
	f.String("format", "", "report format: auto, terminal, plain, table, json")
	f.Bool("strict", false, "also fail on NOT_IMPLEMENTED, SKIPPED or UNKNOWN")
	f.String("history", "", "SQLite file recording one summary per run")
	f.String("unit-out", config.DefaultUnitOut, "unit result file")
	f.StringSlice("packages", []string{"./internal/todo/..."}, "packages to test")
	f.String("e2e-out", config.DefaultE2EOut, "e2e result file")
	f.String("base-url", config.DefaultBaseURL, "app URL")
	f.Bool("headless", true, "run Chrome headless")
	f.BoolVar(&serveApp, "serve", false, "serve the app in-process, on the base URL address, for the e2e stage")
	return cmd
}

func (a *app) runPipeline(ctx context.Context, serveApp bool) error {
	live := isTTY(a.stdout) && !a.cfg.CI
	if live {
		// Keep logs from tearing the live view.
		a.log = a.log.Level(zerolog.WarnLevel)
	}

	// Report on exactly what this run collected.
	a.cfg.Results = []string{a.cfg.Unit.Out, a.cfg.E2E.Out}

	if serveApp {
		stop, err := a.startApp(ctx)
		if err != nil {
			return err
		}
		defer stop()
	}

	// The report is rendered into a buffer and printed once the view is
	// gone. Failing cases are a result, so they do not fail the stage.
	var (
		out       bytes.Buffer
		reportErr error
	)
	err := pipeline.New("tcr run").Plain(!live).
		Add("collect", "unit", a.collectUnit).
		Add("collect", "e2e", a.collectE2E).
		Add("report", "render", func(ctx context.Context) error {
			reportErr = a.report(ctx, &out, a.stdout)
			var ee *exitError
			if errors.As(reportErr, &ee) && ee.code == exitFailed {
				return nil
			}
			return reportErr
		}).
		RunWithOutput(ctx, a.stdout)

	if out.Len() > 0 {
		_, _ = io.WriteString(a.stdout, "\n")
		_, _ = out.WriteTo(a.stdout)
	}
	if reportErr != nil {
		return reportErr
	}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		return &exitError{code: exitFailed, err: err}
	}
	return err
}

// startApp serves the todo app in-process on the e2e base URL's address.
func (a *app) startApp(ctx context.Context) (func(), error) {
	u, err := url.Parse(a.cfg.E2E.BaseURL)
	if err != nil {
		return nil, err
	}
	addr := u.Host
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "80")
	}

	ctx, cancel := context.WithCancel(ctx)
	log := a.log.With().Str("component", "todo").Logger()
	h := todo.NewHandler(todo.NewMemStore(), nil).Router(log)
	srv := todo.NewServer(addr, h, a.cfg.Server.ShutdownTimeout, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("app stopped")
		}
	}()
	return func() {
		cancel()
		<-done
	}, nil
}
