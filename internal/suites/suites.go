// Package suites declares which tests carry which test-case ids.
package suites

import (
	"fmt"

	"github.com/dkoosis/tcr/internal/collect/browser"
	"github.com/dkoosis/tcr/internal/e2e"
	"github.com/dkoosis/tcr/pkg/outcome"
)

// TodoPackage is the import path of the app's unit tests.
const TodoPackage = "github.com/dkoosis/tcr/internal/todo"

// unitCases binds the todo unit tests to catalog ids.
var unitCases = []struct {
	test, caseID string
}{
	{"TestHandler_IndexListsTasks", "TC001"},
	{"TestHandler_UpdatePageShowsTask", "TC002"},
	{"TestHandler_UpdatePostSavesTask", "TC003"},
	{"TestHandler_DeletePageShowsConfirmation", "TC004"},
	{"TestHandler_DeletePostRemovesTask", "TC005"},
	{"TestTask_StringReturnsTitle", "TC006"},
	{"TestHandler_CreateRejectsEmptyTitle", "TC011"},
	{"TestHandler_UpdateRejectsLongTitle", "TC012"},
	{"TestImportDataset_CreatesEveryEntry", "TC014"},
}

// UnitRegistry returns the built-in bindings plus extra, which usually comes
// from the unit_cases config key. A conflicting extra binding is an error.
func UnitRegistry(extra map[string]string) (*outcome.Registry, error) {
	reg := outcome.NewRegistry()
	for _, c := range unitCases {
		reg.MustRegister(TodoPackage+"."+c.test, c.caseID)
	}
	if err := reg.Merge(extra); err != nil {
		return nil, fmt.Errorf("unit_cases: %w", err)
	}
	return reg, nil
}

// E2E returns the browser suite.
func E2E() *browser.Suite {
	return e2e.Suite()
}
