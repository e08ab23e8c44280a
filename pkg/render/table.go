package render

import (
	"bytes"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/dkoosis/tcr/pkg/pattern"
)

// Table renders the test cases and summary as ASCII tables.
type Table struct {
	icons ThemeIcons
}

// NewTable creates a table renderer using the mono icon set.
func NewTable() *Table {
	return &Table{icons: MonoTheme().Icons}
}

// Render formats each pattern as its own table.
func (tr *Table) Render(patterns []pattern.Pattern) string {
	var buf bytes.Buffer
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.TestTable:
			tr.renderCases(&buf, v)
		case *pattern.Summary:
			tr.renderSummary(&buf, v)
		case *pattern.Comparison:
			tr.renderComparison(&buf, v)
		}
	}
	return buf.String()
}

func (tr *Table) renderCases(buf *bytes.Buffer, tt *pattern.TestTable) {
	t := table.NewWriter()
	t.SetOutputMirror(buf)
	t.SetTitle(tt.Label)
	t.AppendHeader(table.Row{"ID", "Type", "Status", "Description"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Description", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})
	for _, r := range tt.Results {
		t.AppendRow(table.Row{r.Name, r.Tag, stateIcon(tr.icons, r.State) + " " + r.Status, clean(r.Details)})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	buf.WriteString("\n")
}

func (tr *Table) renderSummary(buf *bytes.Buffer, s *pattern.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(buf)
	t.SetTitle(s.Label)
	t.AppendHeader(table.Row{"Metric", "Count", "Percent"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Count", Align: text.AlignRight},
		{Name: "Percent", Align: text.AlignRight},
	})
	for _, m := range s.Metrics {
		t.AppendRow(table.Row{m.Label, m.Count, strconv.FormatFloat(m.Percent, 'f', 1, 64) + "%"})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func (tr *Table) renderComparison(buf *bytes.Buffer, c *pattern.Comparison) {
	buf.WriteString("\n")
	t := table.NewWriter()
	t.SetOutputMirror(buf)
	t.SetTitle(c.Label)
	t.AppendHeader(table.Row{"Metric", "Before", "After", "Change"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Before", Align: text.AlignRight},
		{Name: "After", Align: text.AlignRight},
		{Name: "Change", Align: text.AlignRight},
	})
	for _, item := range c.Changes {
		t.AppendRow(table.Row{item.Label, item.Before, item.After, signed(item.Change, item.Unit)})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
