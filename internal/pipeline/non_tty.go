package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"
)

// runPlain executes stages and prints one line per transition for
// non-interactive environments.
func runPlain(ctx context.Context, title string, stages []Stage, out io.Writer) []*State {
	if title != "" {
		fmt.Fprintf(out, "== %s ==\n", title)
	}
	states, updates := Start(ctx, stages)
	for u := range updates {
		st := states[u.Index]
		st.apply(u)
		switch u.Status {
		case StageRunning:
			fmt.Fprintf(out, "[%s] started\n", st.Stage.Label())
		case StageSuccess, StageFailed:
			fmt.Fprintf(out, "[%s] %s\n", st.Stage.Label(), outcomeText(st))
		}
	}
	renderSummary(out, states)
	return states
}

func outcomeText(st *State) string {
	d := formatDuration(st.Duration())
	if st.Status == StageFailed {
		return fmt.Sprintf("failed after %s: %v", d, st.Err)
	}
	return "done in " + d
}

func renderSummary(out io.Writer, states []*State) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	failed := 0
	for _, st := range states {
		var icon string
		switch st.Status {
		case StageSuccess:
			icon = "✓"
		case StageFailed:
			icon = "✗"
			failed++
		default:
			icon = "-"
		}
		duration := st.Duration().Round(10 * time.Millisecond)
		fmt.Fprintf(out, "  %s %s (%s)\n", icon, st.Stage.Label(), duration)
	}
	if failed > 0 {
		fmt.Fprintf(out, "\n%d stage(s) failed\n", failed)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	// Tenths of a second (1.2s, not 1.34s).
	return fmt.Sprintf("%.1fs", d.Round(100*time.Millisecond).Seconds())
}
