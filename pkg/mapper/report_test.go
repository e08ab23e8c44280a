package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/tcr/pkg/catalog"
	"github.com/dkoosis/tcr/pkg/outcome"
	"github.com/dkoosis/tcr/pkg/pattern"
	"github.com/dkoosis/tcr/pkg/report"
	"github.com/dkoosis/tcr/pkg/resolve"
)

func metricByLabel(t *testing.T, s *pattern.Summary, label string) pattern.SummaryItem {
	t.Helper()
	for _, m := range s.Metrics {
		if m.Label == label {
			return m
		}
	}
	t.Fatalf("metric %q not found in %+v", label, s.Metrics)
	return pattern.SummaryItem{}
}

func TestFromReport_TableThenSummary(t *testing.T) {
	t.Parallel()

	r := report.Build([]catalog.Definition{
		{ID: "T1", Type: "auto", Description: "creates a task"},
		{ID: "T2", Type: "manual"},
	}, []outcome.Record{outcome.NewRecord("TestCreate", "T1", outcome.StatusPassed)})

	patterns := FromReport(r)
	require.Len(t, patterns, 2)

	table, ok := patterns[0].(*pattern.TestTable)
	require.True(t, ok, "first pattern should be the table, got %T", patterns[0])
	require.Len(t, table.Results, 2)
	assert.Equal(t, pattern.TestTableItem{
		Name: "T1", Tag: "auto", State: pattern.StatePass, Status: "PASS", Details: "creates a task",
	}, table.Results[0])
	assert.Equal(t, pattern.StateManual, table.Results[1].State)

	sum, ok := patterns[1].(*pattern.Summary)
	require.True(t, ok)
	assert.Equal(t, pattern.SummaryKindReport, sum.Kind)
	assert.Equal(t, "PASS 1/2 test cases", sum.Label)

	passed := metricByLabel(t, sum, "Passed tests")
	assert.Equal(t, 1, passed.Count)
	assert.Equal(t, "1 (50.0%)", passed.Value)

	combined := metricByLabel(t, sum, "Passed + manual")
	assert.Equal(t, 2, combined.Count)
	assert.InDelta(t, 100.0, combined.Percent, 1e-9)
}

func TestFromReport_SkippedAndUnknownOnlyWhenPresent(t *testing.T) {
	t.Parallel()

	clean := FromReport(report.Build([]catalog.Definition{{ID: "T1", Type: "auto"}}, nil))
	for _, m := range clean[1].(*pattern.Summary).Metrics {
		assert.NotEqual(t, "Skipped tests", m.Label)
		assert.NotEqual(t, "Unknown tests", m.Label)
	}

	r := report.Build([]catalog.Definition{
		{ID: "T1", Type: "auto"},
		{ID: "T2", Type: "exploratory"},
	}, []outcome.Record{outcome.NewRecord("x", "T1", outcome.StatusSkipped)})
	sum := FromReport(r)[1].(*pattern.Summary)
	assert.Equal(t, "1 (50.0%)", metricByLabel(t, sum, "Skipped tests").Value)
	assert.Equal(t, "1 (50.0%)", metricByLabel(t, sum, "Unknown tests").Value)
}

func TestFromReport_FailLabel(t *testing.T) {
	t.Parallel()

	r := report.Build(
		[]catalog.Definition{{ID: "T1", Type: "auto"}, {ID: "T2", Type: "auto"}},
		[]outcome.Record{outcome.NewRecord("x", "T1", outcome.StatusError)},
	)
	sum := FromReport(r)[1].(*pattern.Summary)
	assert.Equal(t, "FAIL 1/2 test cases", sum.Label)
	assert.Equal(t, "error", metricByLabel(t, sum, "Failed tests").Kind)
}

func TestFromReport_NothingPassedIsNeutral(t *testing.T) {
	t.Parallel()

	r := report.Build([]catalog.Definition{
		{ID: "T1", Type: "auto"},
		{ID: "T2", Type: "manual"},
	}, nil)
	sum := FromReport(r)[1].(*pattern.Summary)
	assert.Equal(t, "NO RESULTS 2 test cases", sum.Label)

	sum = FromReport(report.Build(nil, nil))[1].(*pattern.Summary)
	assert.Equal(t, "NO RESULTS 0 test cases", sum.Label)
}

func TestState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pattern.StateWIP, State(resolve.StatusNotImplemented))
	assert.Equal(t, pattern.StateSkip, State(resolve.StatusSkipped))
	assert.Equal(t, pattern.StateFail, State(resolve.StatusFail))
	assert.Equal(t, pattern.StateUnknown, State(resolve.Status("other")))
}

func TestHumanize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Not Implemented", humanize(resolve.StatusNotImplemented))
	assert.Equal(t, "Skipped", humanize(resolve.StatusSkipped))
}
