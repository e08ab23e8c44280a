// Package testjson reads go test -json event streams and folds them into
// per-test outcomes.
package testjson

import (
	"strings"
	"time"
)

// Actions emitted by test2json that the aggregator acts on.
const (
	ActionRun    = "run"
	ActionPass   = "pass"
	ActionFail   = "fail"
	ActionSkip   = "skip"
	ActionOutput = "output"
)

// TestEvent represents a single event from go test -json output.
type TestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"` // start, run, pass, fail, skip, output, bench, pause, cont
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// TopLevel reports whether the event belongs to a top-level test rather
// than a subtest or the package itself.
func (e TestEvent) TopLevel() bool {
	return e.Test != "" && !strings.Contains(e.Test, "/")
}

// ProcessFunc receives each decoded event.
type ProcessFunc func(TestEvent)

// TestResult is the final state of one top-level test.
type TestResult struct {
	Package  string
	Name     string
	Action   string // ActionPass, ActionFail or ActionSkip
	Duration time.Duration
	Panicked bool
	Output   []string
}

// QualifiedName is "<package>.<test>".
func (r TestResult) QualifiedName() string {
	if r.Package == "" {
		return r.Name
	}
	return r.Package + "." + r.Name
}

// PackageResult groups the tests of one package in completion order.
type PackageResult struct {
	Name       string
	Tests      []TestResult
	BuildError string // non-empty if the package failed without running tests
	Panicked   bool
}
