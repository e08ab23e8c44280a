// Package report builds the resolved test-case report and its summary.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dkoosis/tcr/pkg/catalog"
	"github.com/dkoosis/tcr/pkg/outcome"
	"github.com/dkoosis/tcr/pkg/resolve"
)

// Report is the full result of one report run.
type Report struct {
	Rows    []resolve.Row
	Summary Summary
}

// Build resolves defs against records and summarises the rows.
func Build(defs []catalog.Definition, records []outcome.Record) *Report {
	rows := resolve.Rows(defs, records)
	return &Report{Rows: rows, Summary: Summarize(rows)}
}

// HasFailures reports whether any row resolved to FAIL.
func (r *Report) HasFailures() bool {
	return r.Summary.Count(resolve.StatusFail) > 0
}

// Incomplete reports whether anything other than PASS, FAIL or MANUAL_ONLY
// is present.
func (r *Report) Incomplete() bool {
	s := r.Summary
	return s.Count(resolve.StatusNotImplemented)+s.Count(resolve.StatusSkipped)+s.Count(resolve.StatusUnknown) > 0
}

// Summary holds per-status counts over the whole catalog.
type Summary struct {
	Total  int
	Counts map[resolve.Status]int
}

// Summarize counts rows by status.
func Summarize(rows []resolve.Row) Summary {
	s := Summary{Total: len(rows), Counts: make(map[resolve.Status]int, len(resolve.Statuses))}
	for _, st := range resolve.Statuses {
		s.Counts[st] = 0
	}
	for _, row := range rows {
		if _, known := s.Counts[row.Status]; known {
			s.Counts[row.Status]++
		} else {
			s.Counts[resolve.StatusUnknown]++
		}
	}
	return s
}

// Count returns the number of rows with status st.
func (s Summary) Count(st resolve.Status) int {
	return s.Counts[st]
}

// Percent returns the share of rows with status st.
func (s Summary) Percent(st resolve.Status) float64 {
	return Percentage(s.Count(st), s.Total)
}

// PassedPlusManual credits manual-only cases as verified, since they need a
// human and cannot be machine-resolved.
func (s Summary) PassedPlusManual() int {
	return s.Count(resolve.StatusPass) + s.Count(resolve.StatusManualOnly)
}

// PassedPlusManualPercent is PassedPlusManual as a share of the total.
func (s Summary) PassedPlusManualPercent() float64 {
	return Percentage(s.PassedPlusManual(), s.Total)
}

// Percentage is part/total as a percentage rounded to one decimal place,
// halves to even on the exact binary value. A zero total yields 0.0.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	x := float64(part) * 100.0 / float64(total)
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return v
}

// FormatPercent renders a percentage the way the summary prints it.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Encode writes rows as an indented JSON array.
func Encode(w io.Writer, rows []resolve.Row) error {
	if rows == nil {
		rows = []resolve.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteJSON overwrites path with the report rows.
func WriteJSON(path string, rows []resolve.Row) error {
	var buf bytes.Buffer
	if err := Encode(&buf, rows); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
