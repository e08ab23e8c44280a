// Package config handles configuration loading and merging for tcr.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--catalog, --format, --no-color, --ci, etc.)
//  2. Environment variables (TCR_CATALOG, TCR_E2E_BASE_URL, NO_COLOR, CI, ...)
//  3. YAML config file (.tcr.yaml in the working directory or ~/.config/tcr/.tcr.yaml)
//  4. Hardcoded defaults
//
// When a higher-priority source sets a value, it overrides any lower-priority values.
//
// # Key Configuration Options
//
//   - Catalog: path of the YAML test catalog (default test_list.yaml)
//   - Results: result files merged by the report, in order
//   - ReportOut: where the JSON report is written (default test_report.json)
//   - Format: auto, terminal, plain, table or json
//   - UnitCases: extra test name to case id bindings for the unit collector
//   - History: sqlite file keeping one summary row per report run (off when empty)
//
// # CI Mode Behavior
//
// When CI mode is enabled (via --ci flag, CI=true env var, or ci: true in YAML)
// colors are disabled and the pipeline view prints one line per stage instead
// of a spinner.
//
// # Environment Variables
//
// Every key maps to TCR_<KEY> with dots replaced by underscores, so
// e2e.base_url is read from TCR_E2E_BASE_URL. NO_COLOR and CI are honored
// without the prefix.
package config
