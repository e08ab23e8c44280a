package pattern

// SummaryKind identifies the source of a summary for dispatch.
type SummaryKind string

const (
	SummaryKindReport SummaryKind = "report"
)

// Summary represents high-level metrics and counts.
type Summary struct {
	Label   string
	Kind    SummaryKind
	Metrics []SummaryItem
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label   string  // e.g. "Passed tests"
	Count   int     // raw count
	Percent float64 // share of the catalog, one decimal
	Value   string  // formatted "count (pct%)"
	Kind    string  // "success", "error", "warning", "manual" or "info"; picks the color
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
