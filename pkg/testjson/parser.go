package testjson

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// ParseStream parses go test -json NDJSON from a reader, line by line.
// Returns the parsed results, the number of malformed lines skipped, and any error.
func ParseStream(r io.Reader) ([]PackageResult, int, error) {
	agg := NewAggregator(nil)
	scanner := bufio.NewScanner(r)
	// Allow large lines for verbose test output
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var malformed int
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event TestEvent
		if err := json.Unmarshal(line, &event); err != nil {
			malformed++
			continue
		}
		agg.Process(event)
	}
	if err := scanner.Err(); err != nil {
		return nil, malformed, fmt.Errorf("scanning test output: %w", err)
	}
	return agg.Results(), malformed, nil
}

// ParseBytes is a convenience for parsing from a byte slice.
func ParseBytes(data []byte) ([]PackageResult, int, error) {
	return ParseStream(bytes.NewReader(data))
}

// scanResult carries a scanned line or terminal error from the scanner goroutine.
type scanResult struct {
	line []byte
	err  error
}

// Stream parses go test -json events line by line and calls fn for each one.
// Stops on EOF or when ctx is cancelled. Returns the number of malformed lines
// skipped and any error.
//
// On cancel, Stream closes r if it implements io.Closer to unblock the
// scanner goroutine; otherwise the caller must close the underlying reader.
func Stream(ctx context.Context, r io.Reader, fn ProcessFunc) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make(chan scanResult)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			// Copy bytes; the scanner reuses its buffer.
			cp := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- scanResult{line: cp}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- scanResult{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	var malformed int
	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return malformed, ctx.Err()
		case res, ok := <-lines:
			if !ok {
				return malformed, nil
			}
			if res.err != nil {
				return malformed, res.err
			}
			if len(res.line) == 0 {
				continue
			}
			var event TestEvent
			if err := json.Unmarshal(res.line, &event); err != nil {
				malformed++
				continue
			}
			fn(event)
		}
	}
}

// Aggregator folds events into per-package results. When onDone is set it is
// called once per top-level test as soon as that test finishes.
type Aggregator struct {
	packages map[string]*pkgState
	order    []string
	onDone   func(TestResult)
}

type pkgState struct {
	name       string
	tests      []TestResult
	buildError string
	panicked   bool
	ran        int
	// output and panic flags for tests still in progress
	outputBuf map[string][]string
	panics    map[string]bool
}

// NewAggregator creates an aggregator; onDone may be nil.
func NewAggregator(onDone func(TestResult)) *Aggregator {
	return &Aggregator{packages: make(map[string]*pkgState), onDone: onDone}
}

func (a *Aggregator) getOrCreate(name string) *pkgState {
	if pkg, ok := a.packages[name]; ok {
		return pkg
	}
	pkg := &pkgState{
		name:      name,
		outputBuf: make(map[string][]string),
		panics:    make(map[string]bool),
	}
	a.packages[name] = pkg
	a.order = append(a.order, name)
	return pkg
}

// Process applies one event.
func (a *Aggregator) Process(e TestEvent) {
	pkg := a.getOrCreate(e.Package)

	switch e.Action {
	case ActionPass, ActionFail, ActionSkip:
		if e.Test == "" {
			// Package-level fail with no tests run means it never built.
			if e.Action == ActionFail && pkg.ran == 0 {
				pkg.buildError = strings.Join(pkg.outputBuf[""], "\n")
				if pkg.buildError == "" {
					pkg.buildError = "package failed before running tests"
				}
			}
			return
		}
		pkg.ran++
		if !e.TopLevel() {
			return
		}
		res := TestResult{
			Package:  pkg.name,
			Name:     e.Test,
			Action:   e.Action,
			Duration: time.Duration(e.Elapsed * float64(time.Second)),
			Panicked: pkg.panics[e.Test],
		}
		if e.Action == ActionFail {
			res.Output = pkg.outputBuf[e.Test]
		}
		delete(pkg.outputBuf, e.Test)
		delete(pkg.panics, e.Test)
		pkg.tests = append(pkg.tests, res)
		if a.onDone != nil {
			a.onDone(res)
		}

	case ActionOutput:
		output := strings.TrimRight(e.Output, "\n")
		if output == "" {
			return
		}
		top := e.Test
		if i := strings.IndexByte(top, '/'); i >= 0 {
			top = top[:i]
		}
		pkg.outputBuf[top] = append(pkg.outputBuf[top], output)
		if strings.HasPrefix(strings.TrimSpace(output), "panic:") {
			pkg.panicked = true
			if top != "" {
				pkg.panics[top] = true
			}
		}
	}
}

// Results returns package results in first-seen order, skipping packages
// with no test activity.
func (a *Aggregator) Results() []PackageResult {
	results := make([]PackageResult, 0, len(a.order))
	for _, name := range a.order {
		pkg := a.packages[name]
		if len(pkg.tests) == 0 && pkg.buildError == "" && !pkg.panicked {
			continue
		}
		results = append(results, PackageResult{
			Name:       pkg.name,
			Tests:      append([]TestResult(nil), pkg.tests...),
			BuildError: pkg.buildError,
			Panicked:   pkg.panicked,
		})
	}
	return results
}

// BuildFailed reports whether any package failed to build.
func (a *Aggregator) BuildFailed() bool {
	for _, pkg := range a.packages {
		if pkg.buildError != "" {
			return true
		}
	}
	return false
}
