package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkoosis/tcr/internal/collect/browser"
	"github.com/dkoosis/tcr/internal/collect/gotest"
	"github.com/dkoosis/tcr/internal/config"
	"github.com/dkoosis/tcr/internal/detect"
	"github.com/dkoosis/tcr/internal/suites"
	"github.com/dkoosis/tcr/pkg/outcome"
)

func (a *app) collectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run a test suite and write its result file",
	}
	cmd.AddCommand(a.collectUnitCmd(), a.collectE2ECmd())
	return cmd
}

// sniffLen bounds how much of a capture is read to find its first event.
const sniffLen = 64 << 10

var unitBindings = map[string]string{
	"out":      "unit.out",
	"go":       "unit.go_bin",
	"packages": "unit.packages",
	"args":     "unit.args",
	"input":    "unit.input",
}

func (a *app) collectUnitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unit",
		Short: "Run go test -json and record one outcome per top-level test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, unitBindings); err != nil {
				return err
			}
			return a.collectUnit(cmd.Context())
		},
	}
	addUnitFlags(cmd)
	return cmd
}

func addUnitFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("out", config.DefaultUnitOut, "result file")
	f.String("go", "go", "go binary")
	f.StringSlice("packages", []string{"./internal/todo/..."}, "packages to test")
	f.StringSlice("args", nil, "extra go test flags, e.g. -count=1")
	f.String("input", "", "read a saved go test -json capture instead of running go test (- for stdin)")
}

func (a *app) collectUnit(ctx context.Context) error {
	cfg := a.cfg
	reg, err := suites.UnitRegistry(cfg.CaseBindings())
	if err != nil {
		return err
	}
	runner := gotest.NewRunner(gotest.Options{
		GoBin:    cfg.Unit.GoBin,
		Packages: cfg.Unit.Packages,
		Args:     cfg.Unit.Args,
	}, reg, a.log.With().Str("stage", "unit").Logger())

	rec := outcome.NewCollector()
	if cfg.Unit.Input != "" {
		err = a.collectCapture(ctx, runner, cfg.Unit.Input, rec)
	} else {
		err = runner.Run(ctx, rec)
	}
	if err != nil {
		return err
	}
	return a.writeResults(rec, cfg.Unit.Out)
}

// collectCapture records outcomes from a go test -json capture at path.
func (a *app) collectCapture(ctx context.Context, runner *gotest.Runner, path string, rec outcome.Recorder) error {
	var in io.Reader = a.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return &exitError{code: exitFatal, err: err}
		}
		defer f.Close()
		in = f
	}

	br := bufio.NewReaderSize(in, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if f := detect.Sniff(head); f != detect.GoTestJSON {
		return &exitError{code: exitFatal, err: fmt.Errorf("%s: expected go test -json output, got %s", path, f)}
	}

	events, err := runner.Collect(ctx, br, rec)
	a.log.Debug().Int("events", events).Str("file", path).Msg("read capture")
	return err
}

var e2eBindings = map[string]string{
	"out":      "e2e.out",
	"base-url": "e2e.base_url",
	"headless": "e2e.headless",
	"timeout":  "e2e.timeout",
}

func (a *app) collectE2ECmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "e2e",
		Short: "Drive the browser scenarios against a running app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, e2eBindings); err != nil {
				return err
			}
			return a.collectE2E(cmd.Context())
		},
	}
	addE2EFlags(cmd)
	return cmd
}

func addE2EFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("out", config.DefaultE2EOut, "result file")
	f.String("base-url", config.DefaultBaseURL, "app URL")
	f.Bool("headless", true, "run Chrome headless")
	f.Duration("timeout", 0, "per-action timeout (default 15s)")
}

func (a *app) collectE2E(ctx context.Context) error {
	cfg := a.cfg
	runner := &browser.Runner{
		Launch: browser.NewLauncher(browser.Options{
			BaseURL:  cfg.E2E.BaseURL,
			Headless: cfg.E2E.Headless,
			Timeout:  cfg.E2E.Timeout,
		}),
		BaseURL:      cfg.E2E.BaseURL,
		Client:       http.DefaultClient,
		ReadyTimeout: cfg.E2E.ReadyTimeout,
		Log:          a.log.With().Str("stage", "e2e").Logger(),
	}

	rec := outcome.NewCollector()
	if err := runner.Run(ctx, suites.E2E(), rec); err != nil {
		return err
	}
	return a.writeResults(rec, cfg.E2E.Out)
}

func (a *app) writeResults(rec *outcome.Collector, path string) error {
	if err := rec.WriteFile(path); err != nil {
		return err
	}
	counts := rec.Counts()
	a.log.Info().
		Str("file", path).
		Int("passed", counts[outcome.StatusPassed]).
		Int("failed", counts[outcome.StatusFailed]).
		Int("error", counts[outcome.StatusError]).
		Int("skipped", counts[outcome.StatusSkipped]).
		Msg("wrote results")
	return nil
}
