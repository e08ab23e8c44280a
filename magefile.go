//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/dkoosis/tcr/internal/magetasks"
)

// Default target - build the binary
var Default = Build

func init() {
	if err := magetasks.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
}

// Build builds the tcr binary
func Build() error {
	return magetasks.BuildAll()
}

// Clean removes build artifacts and result files
func Clean() error {
	return magetasks.Clean()
}

// All lints, tests, builds and then runs the full QA report
func All() {
	mg.SerialDeps(Lint.All, Test.All, Build, QA)
}

// QA collects unit and e2e results against an in-process app and reports
func QA() error {
	mg.Deps(Build)
	return magetasks.QA()
}

// Lint namespace for linting commands
type Lint mg.Namespace

// All runs all linters
func (Lint) All() error {
	return magetasks.LintAll()
}

// Format checks code formatting
func (Lint) Format() error {
	return magetasks.LintFormat()
}

// Vet runs go vet
func (Lint) Vet() error {
	return magetasks.LintVet()
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests
func (Test) All() error {
	return magetasks.TestAll()
}

// Coverage runs tests with coverage
func (Test) Coverage() error {
	return magetasks.TestCoverage()
}

// Race runs tests with race detector
func (Test) Race() error {
	return magetasks.TestRace()
}

// Collect namespace for result collection
type Collect mg.Namespace

// Unit writes the unit result file
func (Collect) Unit() error {
	mg.Deps(Build)
	return magetasks.CollectUnit()
}

// E2E writes the browser result file; the app must already be running
func (Collect) E2E() error {
	mg.Deps(Build)
	return magetasks.CollectE2E()
}

// Report prints the test case report from existing result files
func Report() error {
	mg.Deps(Build)
	return magetasks.Report()
}
