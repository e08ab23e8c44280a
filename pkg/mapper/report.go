// Package mapper converts a resolved report into visualization patterns.
package mapper

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/tcr/pkg/pattern"
	"github.com/dkoosis/tcr/pkg/report"
	"github.com/dkoosis/tcr/pkg/resolve"
)

const (
	kindSuccess = "success"
	kindError   = "error"
	kindWarning = "warning"
	kindManual  = "manual"
	kindInfo    = "info"
)

// FromReport returns a TestTable with one item per catalog row followed by
// the Summary. SKIPPED and UNKNOWN are always counted but only listed in the
// summary when non-zero.
func FromReport(r *report.Report) []pattern.Pattern {
	items := make([]pattern.TestTableItem, 0, len(r.Rows))
	for _, row := range r.Rows {
		items = append(items, pattern.TestTableItem{
			Name:    row.ID,
			Tag:     row.Type,
			State:   State(row.Status),
			Status:  string(row.Status),
			Details: row.Description,
		})
	}

	return []pattern.Pattern{
		&pattern.TestTable{
			Label:   fmt.Sprintf("Test cases (%d)", len(items)),
			Results: items,
		},
		summary(r.Summary),
	}
}

// State maps a resolved status onto a renderer state.
func State(st resolve.Status) string {
	switch st {
	case resolve.StatusPass:
		return pattern.StatePass
	case resolve.StatusFail:
		return pattern.StateFail
	case resolve.StatusNotImplemented:
		return pattern.StateWIP
	case resolve.StatusManualOnly:
		return pattern.StateManual
	case resolve.StatusSkipped:
		return pattern.StateSkip
	default:
		return pattern.StateUnknown
	}
}

func summary(s report.Summary) *pattern.Summary {
	metric := func(label string, count int, pct float64, kind string) pattern.SummaryItem {
		return pattern.SummaryItem{
			Label:   label,
			Count:   count,
			Percent: pct,
			Value:   fmt.Sprintf("%d (%s)", count, report.FormatPercent(pct)),
			Kind:    kind,
		}
	}

	metrics := []pattern.SummaryItem{
		{Label: "Number of tests", Count: s.Total, Percent: 100, Value: fmt.Sprintf("%d", s.Total), Kind: kindInfo},
		metric("Passed tests", s.Count(resolve.StatusPass), s.Percent(resolve.StatusPass), kindSuccess),
		metric("Failed tests", s.Count(resolve.StatusFail), s.Percent(resolve.StatusFail), kindError),
		metric("Not found tests", s.Count(resolve.StatusNotImplemented), s.Percent(resolve.StatusNotImplemented), kindWarning),
		metric("Tests to pass manually", s.Count(resolve.StatusManualOnly), s.Percent(resolve.StatusManualOnly), kindManual),
	}
	for _, st := range []resolve.Status{resolve.StatusSkipped, resolve.StatusUnknown} {
		if n := s.Count(st); n > 0 {
			metrics = append(metrics, metric(humanize(st)+" tests", n, s.Percent(st), kindWarning))
		}
	}
	metrics = append(metrics, metric("Passed + manual", s.PassedPlusManual(), s.PassedPlusManualPercent(), kindSuccess))

	return &pattern.Summary{
		Label:   summaryLabel(s),
		Kind:    pattern.SummaryKindReport,
		Metrics: metrics,
	}
}

func summaryLabel(s report.Summary) string {
	if s.Count(resolve.StatusFail) > 0 {
		return fmt.Sprintf("FAIL %d/%d test cases", s.Count(resolve.StatusFail), s.Total)
	}
	if s.Count(resolve.StatusPass) == 0 {
		return fmt.Sprintf("NO RESULTS %d test cases", s.Total)
	}
	return fmt.Sprintf("PASS %d/%d test cases", s.Count(resolve.StatusPass), s.Total)
}

// humanize turns NOT_IMPLEMENTED into "Not Implemented". Casers are
// stateful, so each call gets its own.
func humanize(st resolve.Status) string {
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(string(st)), "_", " "))
}
