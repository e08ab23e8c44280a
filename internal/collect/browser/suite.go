package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkoosis/tcr/pkg/outcome"
)

var (
	// ErrAssertion marks a scenario whose expectation did not hold.
	ErrAssertion = errors.New("assertion failed")
	// ErrSkip marks a scenario that chose not to run.
	ErrSkip = errors.New("skipped")
)

// Failf returns an error wrapping ErrAssertion.
func Failf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAssertion, fmt.Sprintf(format, args...))
}

// Skipf returns an error wrapping ErrSkip.
func Skipf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSkip, fmt.Sprintf(format, args...))
}

// Scenario is one end-to-end test. CaseID is its explicit test-case tag and
// may be empty.
type Scenario struct {
	Name   string
	CaseID string
	Run    func(ctx context.Context, p Page) error
}

// Suite is an ordered list of scenarios.
type Suite struct {
	name      string
	scenarios []Scenario
}

// NewSuite creates an empty suite; name prefixes every recorded test name.
func NewSuite(name string) *Suite {
	return &Suite{name: name}
}

// Add appends sc and returns the suite for chaining.
func (s *Suite) Add(sc Scenario) *Suite {
	s.scenarios = append(s.scenarios, sc)
	return s
}

// Name returns the suite name.
func (s *Suite) Name() string { return s.name }

// Scenarios returns the scenarios in declaration order.
func (s *Suite) Scenarios() []Scenario {
	return append([]Scenario(nil), s.scenarios...)
}

// TestName is the name recorded for sc.
func (s *Suite) TestName(sc Scenario) string {
	if s.name == "" {
		return sc.Name
	}
	return s.name + "/" + sc.Name
}

// Runner executes suites one scenario at a time.
type Runner struct {
	Launch       Launcher
	BaseURL      string        // probed before the first scenario when set
	Client       *http.Client  // used by the readiness probe
	ReadyTimeout time.Duration // zero means 10s
	Registry     *outcome.Registry
	Log          zerolog.Logger
}

// Run records one outcome per scenario. A failing scenario never stops the
// rest. The returned error is reserved for a cancelled context.
func (r *Runner) Run(ctx context.Context, suite *Suite, rec outcome.Recorder) error {
	if r.BaseURL != "" {
		timeout := r.ReadyTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		if err := WaitReady(ctx, r.Client, r.BaseURL, timeout); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.Log.Error().Err(err).Str("url", r.BaseURL).Msg("app not reachable; recording every scenario as error")
			for _, sc := range suite.Scenarios() {
				r.record(rec, suite, sc, outcome.StatusError, err)
			}
			return nil
		}
	}

	for _, sc := range suite.Scenarios() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		status, err := r.runOne(ctx, sc)
		r.Log.Debug().Str("scenario", sc.Name).Dur("took", time.Since(start)).Msg("scenario finished")
		r.record(rec, suite, sc, status, err)
	}
	return nil
}

func (r *Runner) record(rec outcome.Recorder, suite *Suite, sc Scenario, status outcome.Status, err error) {
	name := suite.TestName(sc)
	caseID := r.Registry.Resolve(name, sc.CaseID)
	rec.Record(name, caseID, status)

	ev := r.Log.Info()
	if status != outcome.StatusPassed {
		ev = r.Log.Warn().Err(err)
	}
	ev.Str("test", name).Str("case", caseID).Str("status", string(status)).Msg("recorded")
}

// runOne gives the scenario a fresh page and turns panics into errors.
func (r *Runner) runOne(ctx context.Context, sc Scenario) (status outcome.Status, err error) {
	defer func() {
		if p := recover(); p != nil {
			status, err = outcome.StatusError, fmt.Errorf("scenario panicked: %v", p)
		}
	}()

	page, cleanup, err := r.Launch(ctx)
	if err != nil {
		return outcome.StatusError, err
	}
	defer cleanup()

	err = sc.Run(ctx, page)
	return classify(err), err
}

func classify(err error) outcome.Status {
	switch {
	case err == nil:
		return outcome.StatusPassed
	case errors.Is(err, ErrSkip):
		return outcome.StatusSkipped
	case errors.Is(err, ErrAssertion):
		return outcome.StatusFailed
	default:
		return outcome.StatusError
	}
}
