package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkoosis/tcr/internal/config"
	"github.com/dkoosis/tcr/internal/history"
	"github.com/dkoosis/tcr/pkg/catalog"
	"github.com/dkoosis/tcr/pkg/mapper"
	"github.com/dkoosis/tcr/pkg/outcome"
	"github.com/dkoosis/tcr/pkg/pattern"
	"github.com/dkoosis/tcr/pkg/render"
	"github.com/dkoosis/tcr/pkg/report"
	"github.com/dkoosis/tcr/pkg/resolve"
)

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Resolve the catalog against result files and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, map[string]string{
				"catalog": "catalog",
				"results": "results",
				"out":     "report_out",
				"format":  "format",
				"theme":   "theme",
				"strict":  "strict",
				"history": "history",
			}); err != nil {
				return err
			}
			return a.report(cmd.Context(), a.stdout, a.stdout)
		},
	}
	f := cmd.Flags()
	f.String("catalog", config.DefaultCatalog, "YAML test catalog")
	f.StringSlice("results", []string{config.DefaultUnitOut, config.DefaultE2EOut}, "result files, merged in order; missing files count as empty")
	f.String("out", config.DefaultReportOut, "JSON report file (empty to skip)")
	f.String("format", "", "output format: auto, terminal, plain, table, json")
	f.String("theme", "default", "terminal theme: default, orca, mono")
	f.Bool("strict", false, "also fail on NOT_IMPLEMENTED, SKIPPED or UNKNOWN")
	f.String("history", "", "SQLite file recording one summary per run (empty to skip)")
	return cmd
}

// report runs the report stage with the loaded config, printing to out.
// Format and width are decided by looking at console, which is usually out.
func (a *app) report(ctx context.Context, out, console io.Writer) error {
	cfg := a.cfg
	defs, err := catalog.Load(cfg.Catalog)
	if err != nil {
		var pe *catalog.ParseError
		if errors.As(err, &pe) {
			return &exitError{code: exitFatal, err: err}
		}
		return err
	}
	records, err := outcome.ReadFiles(cfg.Results...)
	if err != nil {
		return err
	}
	a.log.Debug().Int("cases", len(defs)).Int("records", len(records)).Msg("resolving")

	rep := report.Build(defs, records)
	patterns := mapper.FromReport(rep)
	cmp, err := a.recordHistory(ctx, rep.Summary)
	if err != nil {
		return err
	}
	if cmp != nil {
		patterns = append(patterns, cmp)
	}
	if err := a.printReport(out, console, patterns); err != nil {
		return err
	}
	if cfg.ReportOut != "" {
		if err := report.WriteJSON(cfg.ReportOut, rep.Rows); err != nil {
			return err
		}
		a.log.Info().Str("file", cfg.ReportOut).Int("rows", len(rep.Rows)).Msg("wrote report")
	}

	if rep.HasFailures() {
		return &exitError{code: exitFailed}
	}
	if cfg.Strict && rep.Incomplete() {
		return &exitError{code: exitFailed, err: errors.New("strict: report has unresolved test cases")}
	}
	return nil
}

// recordHistory appends this run to the history database and returns how
// it moved since the previous one, or nil when there is nothing to compare.
func (a *app) recordHistory(ctx context.Context, s report.Summary) (*pattern.Comparison, error) {
	h, err := history.Open(ctx, a.cfg.History)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	if !h.Enabled() {
		return nil, nil
	}

	cur := historyRun(s, time.Now())
	prev, ok, err := h.Last(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.Record(ctx, cur); err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return history.Compare(prev, cur), nil
}

func historyRun(s report.Summary, at time.Time) history.Run {
	return history.Run{
		At:             at,
		Total:          s.Total,
		Pass:           s.Count(resolve.StatusPass),
		Fail:           s.Count(resolve.StatusFail),
		NotImplemented: s.Count(resolve.StatusNotImplemented),
		Manual:         s.Count(resolve.StatusManualOnly),
		Skipped:        s.Count(resolve.StatusSkipped),
		Unknown:        s.Count(resolve.StatusUnknown),
	}
}

func (a *app) printReport(w, console io.Writer, patterns []pattern.Pattern) error {
	format := resolveFormat(a.cfg.Format, console)
	theme := render.ThemeByName(a.cfg.Theme)
	if a.cfg.NoColor {
		theme = render.MonoTheme()
	}
	r, err := render.New(format, theme, termWidth(console))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, r.Render(patterns))
	return err
}

// resolveFormat picks terminal on a TTY and plain otherwise when format is
// empty or "auto".
func resolveFormat(format string, w io.Writer) string {
	if format != "" && format != "auto" {
		return format
	}
	if isTTY(w) {
		return render.FormatTerminal
	}
	return render.FormatPlain
}
