// Package pattern defines the semantic data types for tcr's report output.
// Patterns are pure data; renderers decide presentation.
package pattern

// PatternType identifies the kind of visualization pattern.
type PatternType string

const (
	PatternTypeSummary    PatternType = "summary"
	PatternTypeTestTable  PatternType = "test-table"
	PatternTypeComparison PatternType = "comparison"
)

// Pattern is the interface all visualization patterns implement.
// Patterns hold data; renderers decide how to present it.
type Pattern interface {
	Type() PatternType
}
