// Command tcr collects test outcomes and reports them against a test-case
// catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dkoosis/tcr/internal/config"
	"github.com/dkoosis/tcr/internal/logging"
	"github.com/dkoosis/tcr/internal/version"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // failing report or stage
	exitFatal  = 2 // usage, config or unreadable input
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the exit code, so tests can drive it
// without os.Exit.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "tcr: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "tcr: %v\n", err)
	return exitFatal
}

// exitError carries a specific exit code; err may be nil when the output
// already explains the failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// app is the state shared by every subcommand.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	configPath     string
	cfg            *config.Config
	log            zerolog.Logger
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tcr",
		Short:         "Collect test outcomes and report them against a test-case catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default .tcr.yaml in . or ~/.config/tcr)")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.Bool("log-json", false, "log JSON lines instead of console output")
	pf.Bool("no-color", false, "disable colors")
	pf.Bool("ci", false, "CI mode: no colors, no live view")

	root.AddCommand(
		a.reportCmd(),
		a.collectCmd(),
		a.serveCmd(),
		a.importCmd(),
		a.runCmd(),
		a.versionCmd(),
	)
	return root
}

// globalBindings maps persistent flags to config keys.
var globalBindings = map[string]string{
	"log-level": "log_level",
	"log-json":  "log_json",
	"no-color":  "no_color",
	"ci":        "ci",
}

// load merges flags, env, file and defaults into a.cfg and builds the
// logger. bindings maps the command's own flags to config keys.
func (a *app) load(cmd *cobra.Command, bindings map[string]string) error {
	v, err := config.New(a.configPath)
	if err != nil {
		return err
	}
	for _, b := range []map[string]string{globalBindings, bindings} {
		for flag, key := range b {
			f := cmd.Flag(flag)
			if f == nil {
				return fmt.Errorf("internal: no flag %q", flag)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = logging.New(a.stderr, logging.Options{
		Level:   cfg.LogLevel,
		JSON:    cfg.LogJSON || !isTTY(a.stderr),
		NoColor: cfg.NoColor,
	})
	if err != nil {
		return err
	}
	if file := config.ConfigFile(v); file != "" {
		a.log.Debug().Str("file", file).Msg("loaded config")
	}
	return nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(a.stdout, version.String())
		},
	}
}

// isTTY reports whether w is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width for w, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 80
}
