package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/tcr/internal/version"
)

const sampleCatalog = `tests:
  - id: TC001
    type: auto
    description: Home page lists tasks
  - id: TC002
    type: auto
    description: Create a task
  - id: TC003
    type: manuel
    description: Layout looks right
  - id: TC004
    type: auto
    description: Not written yet
`

// workspace chdirs into a fresh dir holding the catalog and one result
// file, so no stray .tcr.yaml is picked up. Tests using it are serial.
func workspace(t *testing.T, results string) string {
	t.Helper()
	dir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")
	require.NoError(t, os.WriteFile("test_list.yaml", []byte(sampleCatalog), 0o644))
	require.NoError(t, os.WriteFile("result_test_auto.json", []byte(results), 0o644))
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const passingResults = `[
  {"test_case_id": "TC001", "test_name": "TestIndex", "status": "passed"},
  {"test_case_id": "TC002", "test_name": "TestCreate", "status": "passed"},
  {"test_case_id": null, "test_name": "TestHelper", "status": "failed"}
]`

func TestReport_PassingRunExitsZeroAndWritesJSON(t *testing.T) {
	dir := workspace(t, passingResults)

	code, stdout, stderr := runCLI(t, "report", "--format", "plain")
	require.Equal(t, exitOK, code, stderr)

	assert.Contains(t, stdout, "- TC001 [auto] | + PASS")
	assert.Contains(t, stdout, "- TC003 [manuel] | m MANUAL_ONLY")
	assert.Contains(t, stdout, "- TC004 [auto] | - NOT_IMPLEMENTED")
	assert.Contains(t, stdout, "Passed tests: 2 (50.0%)")
	assert.Contains(t, stdout, "Passed + manual: 3 (75.0%)")

	data, err := os.ReadFile(filepath.Join(dir, "test_report.json"))
	require.NoError(t, err)
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 4)
	assert.Equal(t, "TC004", rows[3]["id"])
	assert.Equal(t, "NOT_IMPLEMENTED", rows[3]["status"])
}

func TestReport_FailureDominatesAndExitsOne(t *testing.T) {
	workspace(t, `[
  {"test_case_id": "TC001", "test_name": "TestIndex", "status": "passed"},
  {"test_case_id": "TC001", "test_name": "TestIndexEmpty", "status": "error"}
]`)

	code, stdout, _ := runCLI(t, "report", "--format", "plain", "--out", "")
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stdout, "- TC001 [auto] | x FAIL")
	assert.Contains(t, stdout, "## FAIL 1/4 test cases")
	assert.NoFileExists(t, "test_report.json")
}

func TestReport_StrictFailsOnUnresolvedCases(t *testing.T) {
	workspace(t, passingResults)

	code, _, stderr := runCLI(t, "report", "--format", "plain", "--strict")
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr, "strict")
}

func TestReport_MissingCatalogIsFatal(t *testing.T) {
	workspace(t, passingResults)

	code, stdout, stderr := runCLI(t, "report", "--catalog", "nope.yaml")
	assert.Equal(t, exitFatal, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "parse catalog nope.yaml")
}

func TestReport_MalformedResultsIsFatal(t *testing.T) {
	workspace(t, `{"not": "an array"}`)

	code, _, stderr := runCLI(t, "report", "--format", "plain")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "result_test_auto.json")
}

func TestReport_JSONFormatPrintsPatterns(t *testing.T) {
	workspace(t, passingResults)

	code, stdout, _ := runCLI(t, "report", "--format", "json", "--out", "")
	require.Equal(t, exitOK, code)

	var doc struct {
		Patterns []struct {
			Type string `json:"type"`
		} `json:"patterns"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	require.Len(t, doc.Patterns, 2)
	assert.Equal(t, "test-table", doc.Patterns[0].Type)
}

func TestReport_InvalidFormatIsFatal(t *testing.T) {
	workspace(t, passingResults)

	code, _, stderr := runCLI(t, "report", "--format", "llm")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "Format")
}

func TestReport_ConfigFileSuppliesCatalog(t *testing.T) {
	workspace(t, passingResults)
	require.NoError(t, os.Rename("test_list.yaml", "cases.yaml"))
	require.NoError(t, os.WriteFile(".tcr.yaml", []byte("catalog: cases.yaml\nformat: plain\n"), 0o644))

	code, stdout, stderr := runCLI(t, "report", "--out", "")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "TC004")
}

func TestUnknownCommandIsFatal(t *testing.T) {
	workspace(t, passingResults)

	code, _, stderr := runCLI(t, "frobnicate")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestVersion_PrintsBuildInfo(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, version.String()+"\n", stdout)
}

func TestImport_SeedsMemoryStore(t *testing.T) {
	dir := workspace(t, passingResults)
	dataset := filepath.Join(dir, "dataset.json")
	require.NoError(t, os.WriteFile(dataset, []byte(`[{"title": "buy milk"}, {"title": "walk dog", "complete": true}]`), 0o644))

	code, stdout, stderr := runCLI(t, "import", "--db-driver", "memory", dataset)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "2 task(s) imported\n", stdout)
}

func TestImport_BadEntryReportsProgress(t *testing.T) {
	dir := workspace(t, passingResults)
	dataset := filepath.Join(dir, "dataset.json")
	require.NoError(t, os.WriteFile(dataset, []byte(`[{"title": "ok"}, {"complete": true}]`), 0o644))

	code, _, stderr := runCLI(t, "import", "--db-driver", "memory", dataset)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "imported 1 task(s) before failing")
	assert.Contains(t, stderr, "entry 1 has no title")
}

func TestResolveFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Equal(t, "plain", resolveFormat("", &buf))
	assert.Equal(t, "plain", resolveFormat("auto", &buf))
	assert.Equal(t, "table", resolveFormat("table", &buf))
}

const capture = `{"Action":"run","Package":"github.com/dkoosis/tcr/internal/todo","Test":"TestHandler_IndexListsTasks"}
{"Action":"pass","Package":"github.com/dkoosis/tcr/internal/todo","Test":"TestHandler_IndexListsTasks","Elapsed":0.01}
{"Action":"run","Package":"github.com/dkoosis/tcr/internal/todo","Test":"TestHandler_UpdatePageShowsTask"}
{"Action":"fail","Package":"github.com/dkoosis/tcr/internal/todo","Test":"TestHandler_UpdatePageShowsTask","Elapsed":0.01}
{"Action":"fail","Package":"github.com/dkoosis/tcr/internal/todo","Elapsed":0.2}
`

func TestCollectUnit_FromCapture(t *testing.T) {
	dir := workspace(t, "[]")
	require.NoError(t, os.WriteFile("capture.json", []byte(capture), 0o644))
	out := filepath.Join(dir, "unit.json")

	code, _, stderr := runCLI(t, "collect", "unit", "--input", "capture.json", "--out", out)
	require.Equal(t, exitOK, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var records []struct {
		CaseID *string `json:"test_case_id"`
		Status string  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	require.NotNil(t, records[0].CaseID)
	assert.Equal(t, "TC001", *records[0].CaseID)
	assert.Equal(t, "passed", records[0].Status)
	assert.Equal(t, "failed", records[1].Status)
}

func TestCollectUnit_RejectsResultFileAsCapture(t *testing.T) {
	workspace(t, passingResults)

	code, _, stderr := runCLI(t, "collect", "unit", "--input", "result_test_auto.json", "--out", "unit.json")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "expected go test -json output, got result file")
}

func TestReport_HistoryPrintsComparisonOnSecondRun(t *testing.T) {
	workspace(t, passingResults)
	args := []string{"report", "--format", "plain", "--out", "", "--history", "runs/history.db"}

	code, stdout, stderr := runCLI(t, args...)
	require.Equal(t, exitOK, code, stderr)
	assert.NotContains(t, stdout, "Since last run")

	code, stdout, stderr = runCLI(t, args...)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "## Since last run (")
	assert.Contains(t, stdout, "Passed: 2 -> 2 (+0)\n")
	assert.Contains(t, stdout, "Failed: 0 -> 0 (+0)\n")
	assert.Contains(t, stdout, "Not implemented: 1 -> 1 (+0)\n")
}

func TestReport_HistoryKeepsJSONOutputValid(t *testing.T) {
	workspace(t, passingResults)
	args := []string{"report", "--format", "json", "--out", "", "--history", "history.db"}

	code, _, stderr := runCLI(t, args...)
	require.Equal(t, exitOK, code, stderr)
	code, stdout, stderr := runCLI(t, args...)
	require.Equal(t, exitOK, code, stderr)

	var doc struct {
		Patterns []struct {
			Type string `json:"type"`
		} `json:"patterns"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc), stdout)
	require.Len(t, doc.Patterns, 3)
	assert.Equal(t, "comparison", doc.Patterns[2].Type)
}

func TestRun_ReportsOnCollectedFiles(t *testing.T) {
	// A stale default result file must not feed the report.
	workspace(t, `[{"test_case_id": "TC004", "test_name": "TestStale", "status": "passed"}]`)
	require.NoError(t, os.WriteFile("capture.json", []byte(capture), 0o644))
	t.Setenv("TCR_UNIT_INPUT", "capture.json")
	t.Setenv("TCR_E2E_READY_TIMEOUT", "200ms")

	code, stdout, stderr := runCLI(t, "run",
		"--unit-out", "unit.json", "--e2e-out", "e2e.json",
		"--base-url", "http://127.0.0.1:1", "--format", "plain", "--report-out", "")
	assert.Equal(t, exitFailed, code, stderr)

	assert.FileExists(t, "unit.json")
	assert.FileExists(t, "e2e.json")
	assert.Contains(t, stdout, "- TC001 [auto] | + PASS")
	assert.Contains(t, stdout, "- TC002 [auto] | x FAIL")
	assert.Contains(t, stdout, "- TC004 [auto] | - NOT_IMPLEMENTED")
}
