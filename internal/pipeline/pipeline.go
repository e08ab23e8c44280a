// Package pipeline runs the collect and report stages in order, with a live
// view on a terminal and plain status lines elsewhere.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Pipeline orchestrates stages with TUI or streaming output.
type Pipeline struct {
	title  string
	stages []Stage
	plain  bool
}

// New creates an empty pipeline with the given title.
func New(title string) *Pipeline {
	return &Pipeline{title: title}
}

// Add appends a stage.
func (p *Pipeline) Add(group, name string, run func(ctx context.Context) error) *Pipeline {
	p.stages = append(p.stages, Stage{Group: group, Name: name, Run: run})
	return p
}

// Plain forces streaming output even on a terminal (CI mode).
func (p *Pipeline) Plain(plain bool) *Pipeline {
	p.plain = plain
	return p
}

// Stages returns the configured stages in order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Run executes all stages to os.Stdout.
func (p *Pipeline) Run(ctx context.Context) error {
	return p.RunWithOutput(ctx, os.Stdout)
}

// RunWithOutput executes all stages. It uses the TUI when w is a terminal
// and plain mode is off, otherwise it streams. Returns *StageError if any
// stage failed.
func (p *Pipeline) RunWithOutput(ctx context.Context, w io.Writer) error {
	if len(p.stages) == 0 {
		return nil
	}

	isTTY := false
	if f, ok := w.(*os.File); ok && !p.plain {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	var (
		states []*State
		err    error
	)
	if isTTY {
		states, err = runTUI(ctx, p.title, p.stages, w)
	} else {
		states = runPlain(ctx, p.title, p.stages, w)
	}
	if err != nil {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return failures(states)
}

func failures(states []*State) error {
	var se StageError
	for _, s := range states {
		if s.Status == StageFailed {
			se.Failed = append(se.Failed, s.Stage.Label())
			se.Errs = append(se.Errs, s.Err)
		}
	}
	if len(se.Failed) == 0 {
		return nil
	}
	return &se
}

// ErrInterrupted is returned when the user quits the live view before every
// stage has run.
var ErrInterrupted = errors.New("pipeline interrupted")

// StageError indicates one or more stages failed.
type StageError struct {
	Failed []string
	Errs   []error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%d stage(s) failed: %s", len(e.Failed), strings.Join(e.Failed, ", "))
}

// Unwrap exposes the stage errors to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	return e.Errs
}
