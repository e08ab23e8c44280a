// Package gotest collects outcomes by running `go test -json` and recording
// one result per top-level test.
package gotest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dkoosis/tcr/pkg/outcome"
	"github.com/dkoosis/tcr/pkg/testjson"
)

// Options configure the child `go test` process.
type Options struct {
	GoBin    string   // defaults to "go"
	Packages []string // defaults to "./..."
	Args     []string // extra flags placed before the packages
	Dir      string
	Env      []string // appended to os.Environ()
}

// Runner drives one collection.
type Runner struct {
	opts     Options
	registry *outcome.Registry
	log      zerolog.Logger
}

// NewRunner returns a runner that tags tests through registry, which may
// be nil when nothing is tagged.
func NewRunner(opts Options, registry *outcome.Registry, log zerolog.Logger) *Runner {
	if opts.GoBin == "" {
		opts.GoBin = "go"
	}
	if len(opts.Packages) == 0 {
		opts.Packages = []string{"./..."}
	}
	return &Runner{opts: opts, registry: registry, log: log}
}

// command returns the argv passed to GoBin.
func (r *Runner) command() []string {
	args := []string{"test", "-json"}
	args = append(args, r.opts.Args...)
	return append(args, r.opts.Packages...)
}

// Run executes go test and records outcomes into rec. Failing tests and a
// non-zero exit status are results, not errors; an error means the process
// could not be started or produced nothing to collect.
func (r *Runner) Run(ctx context.Context, rec outcome.Recorder) error {
	args := r.command()
	cmd := exec.CommandContext(ctx, r.opts.GoBin, args...)
	cmd.Dir = r.opts.Dir
	cmd.Env = append(os.Environ(), r.opts.Env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	r.log.Debug().Str("bin", r.opts.GoBin).Strs("args", args).Msg("starting go test")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", r.opts.GoBin, err)
	}

	n, collectErr := r.Collect(ctx, stdout, rec)
	waitErr := cmd.Wait()

	if collectErr != nil {
		return collectErr
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return fmt.Errorf("go test: %w", waitErr)
		}
		if n == 0 {
			return fmt.Errorf("go test exited with status %d and no test events: %s",
				exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		r.log.Debug().Int("exit", exitErr.ExitCode()).Msg("go test reported failures")
	}
	return nil
}

// Collect records outcomes from an existing `go test -json` stream and
// returns the number of events processed.
func (r *Runner) Collect(ctx context.Context, stream io.Reader, rec outcome.Recorder) (int, error) {
	seen := make(map[string]bool)
	agg := testjson.NewAggregator(func(res testjson.TestResult) {
		qualified := res.QualifiedName()
		seen[qualified] = true
		seen[res.Name] = true
		status := statusOf(res)
		caseID := r.caseID(res)
		rec.Record(qualified, caseID, status)
		ev := r.log.Debug()
		if status != outcome.StatusPassed {
			ev = r.log.Info()
		}
		ev.Str("test", qualified).Str("case", caseID).Str("status", string(status)).Msg("recorded")
	})

	events := 0
	malformed, err := testjson.Stream(ctx, stream, func(e testjson.TestEvent) {
		events++
		agg.Process(e)
	})
	if malformed > 0 {
		r.log.Debug().Int("lines", malformed).Msg("skipped non-JSON output")
	}
	if err != nil {
		return events, fmt.Errorf("reading go test output: %w", err)
	}

	// A build failure or a panic stops the package's test binary, so tests
	// after that point never report.
	aborted := make(map[string]bool)
	for _, pkg := range agg.Results() {
		switch {
		case pkg.BuildError != "":
			r.log.Warn().Str("package", pkg.Name).Msg("package failed to build")
		case pkg.Panicked:
			r.log.Warn().Str("package", pkg.Name).Msg("test binary panicked")
		default:
			continue
		}
		aborted[pkg.Name] = true
	}
	if len(aborted) > 0 {
		r.recordUnseen(seen, aborted, rec)
	}
	return events, nil
}

// recordUnseen marks registered tests that never reported as errors so an
// aborted package shows up as FAIL rather than NOT_IMPLEMENTED. Qualified
// names only count against their own package; bare names against any.
func (r *Runner) recordUnseen(seen, aborted map[string]bool, rec outcome.Recorder) {
	for _, test := range r.registry.Tests() {
		if seen[test] {
			continue
		}
		if i := strings.LastIndexByte(test, '.'); i >= 0 && !aborted[test[:i]] {
			continue
		}
		id, _ := r.registry.CaseID(test)
		rec.Record(test, id, outcome.StatusError)
		r.log.Info().Str("test", test).Str("case", id).Msg("recorded error: no result after package aborted")
	}
}

// caseID looks up the qualified name first, then the bare test name.
func (r *Runner) caseID(res testjson.TestResult) string {
	if id, ok := r.registry.CaseID(res.QualifiedName()); ok {
		return id
	}
	id, _ := r.registry.CaseID(res.Name)
	return id
}

func statusOf(res testjson.TestResult) outcome.Status {
	switch res.Action {
	case testjson.ActionPass:
		return outcome.StatusPassed
	case testjson.ActionSkip:
		return outcome.StatusSkipped
	case testjson.ActionFail:
		if res.Panicked {
			return outcome.StatusError
		}
		return outcome.StatusFailed
	}
	return outcome.StatusError
}
