package render

import (
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/dkoosis/tcr/pkg/pattern"
)

// Plain renders patterns as deterministic text with zero ANSI codes. It is
// the default when stdout is not a terminal.
type Plain struct {
	icons ThemeIcons
}

// NewPlain creates a plain renderer using the mono icon set.
func NewPlain() *Plain {
	return &Plain{icons: MonoTheme().Icons}
}

// Render formats every pattern, table first, in the order given.
func (p *Plain) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for i, pat := range patterns {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch v := pat.(type) {
		case *pattern.TestTable:
			p.renderTable(&sb, v)
		case *pattern.Summary:
			p.renderSummary(&sb, v)
		case *pattern.Comparison:
			p.renderComparison(&sb, v)
		}
	}
	return sb.String()
}

func (p *Plain) renderTable(sb *strings.Builder, tt *pattern.TestTable) {
	if tt.Label != "" {
		sb.WriteString("## " + tt.Label + "\n")
	}
	for _, r := range tt.Results {
		fmt.Fprintf(sb, "- %s [%s] | %s %s\n", clean(r.Name), clean(r.Tag), stateIcon(p.icons, r.State), r.Status)
		if r.Details != "" {
			for _, line := range strings.Split(clean(r.Details), "\n") {
				sb.WriteString("    " + line + "\n")
			}
		}
	}
}

func (p *Plain) renderSummary(sb *strings.Builder, s *pattern.Summary) {
	if s.Label != "" {
		sb.WriteString("## " + s.Label + "\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString(m.Label + ": " + m.Value + "\n")
	}
}

func (p *Plain) renderComparison(sb *strings.Builder, c *pattern.Comparison) {
	if c.Label != "" {
		sb.WriteString("## " + c.Label + "\n")
	}
	for _, item := range c.Changes {
		fmt.Fprintf(sb, "%s: %s -> %s (%s)\n", item.Label, item.Before, item.After, signed(item.Change, item.Unit))
	}
}

// clean strips terminal escapes that catalog authors may have pasted into
// descriptions.
func clean(s string) string {
	return stripansi.Strip(s)
}
