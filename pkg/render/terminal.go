package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/tcr/pkg/pattern"
)

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.TestTable:
		return t.renderTestTable(v)
	case *pattern.Comparison:
		return t.renderComparison(v)
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
	}
	maxLabel := 0
	for _, m := range s.Metrics {
		if w := runewidth.StringWidth(m.Label); w > maxLabel {
			maxLabel = w
		}
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString(style.Render(icon + " " + padRight(m.Label+":", maxLabel+1) + " " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderTestTable(tt *pattern.TestTable) string {
	if len(tt.Results) == 0 {
		return ""
	}
	var sb strings.Builder
	if tt.Label != "" {
		sb.WriteString(t.theme.Bold.Render(tt.Label))
		sb.WriteString("\n")
	}

	maxName, maxTag := 0, 0
	for _, r := range tt.Results {
		if w := runewidth.StringWidth(r.Name); w > maxName {
			maxName = w
		}
		if w := runewidth.StringWidth(r.Tag) + 2; w > maxTag {
			maxTag = w
		}
	}
	if maxName > 40 {
		maxName = 40
	}

	detailWidth := t.width - 6
	if detailWidth < 20 {
		detailWidth = 20
	}

	for _, r := range tt.Results {
		sb.WriteString("  ")
		icon, style := t.stateIconStyle(r.State)

		sb.WriteString(t.theme.Primary.Render(padRight(runewidth.Truncate(r.Name, maxName, "..."), maxName)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Muted.Render(padRight("["+r.Tag+"]", maxTag)))
		sb.WriteString("  ")
		sb.WriteString(style.Render(icon + " " + r.Status))

		if r.Details != "" {
			for _, line := range strings.Split(r.Details, "\n") {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Muted.Render(runewidth.Truncate(line, detailWidth, "...")))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderComparison(c *pattern.Comparison) string {
	if len(c.Changes) == 0 {
		return ""
	}
	var sb strings.Builder
	if c.Label != "" {
		sb.WriteString(t.theme.Bold.Render(c.Label))
		sb.WriteString("\n")
	}
	for _, item := range c.Changes {
		sb.WriteString("  ")
		sb.WriteString(item.Label + ": ")
		sb.WriteString(t.theme.Muted.Render(item.Before + " → " + item.After))
		sb.WriteString(" ")

		var arrow string
		style := t.theme.Muted
		switch {
		case item.Change > 0:
			arrow = "↑"
		case item.Change < 0:
			arrow = "↓"
		default:
			arrow = "="
		}
		if item.Change != 0 {
			if (item.Change > 0) == item.HigherIsBetter {
				style = t.theme.Success
			} else {
				style = t.theme.Warning
			}
		}
		abs := item.Change
		if abs < 0 {
			abs = -abs
		}
		sb.WriteString(style.Render(fmt.Sprintf("%s %s%s", arrow, strconv.FormatFloat(abs, 'f', -1, 64), item.Unit)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Pass, t.theme.Success
	case "error":
		return t.theme.Icons.Fail, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	case "manual":
		return t.theme.Icons.Manual, t.theme.Manual
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

func (t *Terminal) stateIconStyle(state string) (string, lipgloss.Style) {
	return stateIcon(t.theme.Icons, state), t.stateStyle(state)
}

func (t *Terminal) stateStyle(state string) lipgloss.Style {
	switch state {
	case pattern.StatePass:
		return t.theme.Success
	case pattern.StateFail:
		return t.theme.Error
	case pattern.StateSkip:
		return t.theme.Warning
	case pattern.StateManual:
		return t.theme.Manual
	default:
		return t.theme.Muted
	}
}

// stateIcon picks the glyph for a test-case state.
func stateIcon(icons ThemeIcons, state string) string {
	switch state {
	case pattern.StatePass:
		return icons.Pass
	case pattern.StateFail:
		return icons.Fail
	case pattern.StateSkip:
		return icons.Warn
	case pattern.StateWIP:
		return icons.WIP
	case pattern.StateManual:
		return icons.Manual
	default:
		return icons.Unknown
	}
}

// signed formats a change with an explicit sign.
func signed(v float64, unit string) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v >= 0 {
		s = "+" + s
	}
	return s + unit
}

// padRight pads by display width so wide glyphs and accents line up.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
