package magetasks

import (
	"os"

	"github.com/magefile/mage/sh"
)

// tcr runs the built binary with CI output, so nothing tries to draw a
// live view inside mage.
func tcr(args ...string) error {
	env := map[string]string{"TCR_CI": "true"}
	_, err := sh.Exec(env, os.Stdout, os.Stderr, BinPath, args...)
	return err
}

// CollectUnit runs the todo app's unit tests and writes the unit result file.
func CollectUnit() error {
	PrintH2Header("Collect unit results")
	return tcr("collect", "unit")
}

// CollectE2E drives the browser scenarios against a running app and writes
// the e2e result file.
func CollectE2E() error {
	PrintH2Header("Collect e2e results")
	return tcr("collect", "e2e")
}

// Report resolves the catalog against whatever result files exist.
func Report() error {
	PrintH2Header("Test case report")
	return tcr("report")
}

// QA collects everything with an in-process app, then reports.
func QA() error {
	PrintH1Header("tcr QA")
	return tcr("run", "--serve")
}
