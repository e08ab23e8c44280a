// Package render provides output renderers for tcr's report patterns.
package render

import (
	"fmt"

	"github.com/dkoosis/tcr/pkg/pattern"
)

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// Formats accepted by New, besides "auto" which callers resolve first.
const (
	FormatTerminal = "terminal"
	FormatPlain    = "plain"
	FormatTable    = "table"
	FormatJSON     = "json"
)

// New returns the renderer for a resolved format name.
func New(format string, theme Theme, width int) (Renderer, error) {
	switch format {
	case FormatTerminal:
		return NewTerminal(theme, width), nil
	case FormatPlain:
		return NewPlain(), nil
	case FormatTable:
		return NewTable(), nil
	case FormatJSON:
		return NewJSON(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected auto, terminal, plain, table, json)", format)
	}
}
