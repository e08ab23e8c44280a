package testjson

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestParseStream_TopLevelOutcomes(t *testing.T) {
	t.Parallel()

	input := lines(
		`{"Action":"run","Package":"example.com/todo","Test":"TestA"}`,
		`{"Action":"pass","Package":"example.com/todo","Test":"TestA","Elapsed":0.1}`,
		`{"Action":"run","Package":"example.com/todo","Test":"TestB"}`,
		`{"Action":"run","Package":"example.com/todo","Test":"TestB/sub"}`,
		`{"Action":"output","Package":"example.com/todo","Test":"TestB/sub","Output":"    handler_test.go:12: want 200\n"}`,
		`{"Action":"fail","Package":"example.com/todo","Test":"TestB/sub","Elapsed":0}`,
		`{"Action":"fail","Package":"example.com/todo","Test":"TestB","Elapsed":0.2}`,
		`{"Action":"skip","Package":"example.com/todo","Test":"TestC","Elapsed":0}`,
		`{"Action":"fail","Package":"example.com/todo","Elapsed":0.5}`,
	)

	results, malformed, err := ParseStream(strings.NewReader(input))
	require.NoError(t, err)
	assert.Zero(t, malformed)
	require.Len(t, results, 1)

	pkg := results[0]
	assert.Empty(t, pkg.BuildError, "tests ran, so this is not a build failure")
	require.Len(t, pkg.Tests, 3, "subtests are folded into their parent")

	assert.Equal(t, "TestA", pkg.Tests[0].Name)
	assert.Equal(t, ActionPass, pkg.Tests[0].Action)
	assert.Equal(t, 100*time.Millisecond, pkg.Tests[0].Duration)

	assert.Equal(t, ActionFail, pkg.Tests[1].Action)
	assert.Equal(t, []string{"    handler_test.go:12: want 200"}, pkg.Tests[1].Output)
	assert.Equal(t, "example.com/todo.TestB", pkg.Tests[1].QualifiedName())

	assert.Equal(t, ActionSkip, pkg.Tests[2].Action)
}

func TestParseStream_PanicIsAttributedToTest(t *testing.T) {
	t.Parallel()

	input := lines(
		`{"Action":"run","Package":"p","Test":"TestBad"}`,
		`{"Action":"output","Package":"p","Test":"TestBad","Output":"panic: runtime error: index out of range\n"}`,
		`{"Action":"fail","Package":"p","Test":"TestBad","Elapsed":0}`,
		`{"Action":"fail","Package":"p","Elapsed":0.1}`,
	)

	results, _, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Panicked)
	require.Len(t, results[0].Tests, 1)
	assert.True(t, results[0].Tests[0].Panicked)
}

func TestParseStream_BuildFailure(t *testing.T) {
	t.Parallel()

	input := lines(
		`{"Action":"start","Package":"p"}`,
		`{"Action":"output","Package":"p","Output":"# p\n"}`,
		`{"Action":"output","Package":"p","Output":"./x.go:3:1: syntax error\n"}`,
		`{"Action":"fail","Package":"p","Elapsed":0}`,
		`{"Action":"start","Package":"q"}`,
		`{"Action":"pass","Package":"q","Elapsed":0}`,
	)

	results, _, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	require.Len(t, results, 1, "idle package q is dropped")
	assert.Contains(t, results[0].BuildError, "syntax error")
	assert.Empty(t, results[0].Tests)
}

func TestAggregator_CallsOnDoneInCompletionOrder(t *testing.T) {
	t.Parallel()

	var done []string
	agg := NewAggregator(func(r TestResult) { done = append(done, r.Name+":"+r.Action) })
	for _, e := range []TestEvent{
		{Action: ActionRun, Package: "p", Test: "TestSlow"},
		{Action: ActionRun, Package: "p", Test: "TestFast"},
		{Action: ActionPass, Package: "p", Test: "TestFast"},
		{Action: ActionPass, Package: "p", Test: "TestSlow/case"},
		{Action: ActionFail, Package: "p", Test: "TestSlow"},
	} {
		agg.Process(e)
	}

	assert.Equal(t, []string{"TestFast:pass", "TestSlow:fail"}, done)
	assert.False(t, agg.BuildFailed())
}

func TestParseStream_MalformedLinesSkipped(t *testing.T) {
	t.Parallel()

	input := "not json\n" + lines(`{"Action":"pass","Package":"p","Test":"TestA"}`) + "{broken\n"
	results, malformed, err := ParseStream(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, malformed)
	require.Len(t, results, 1)
}

func TestStream_CallsFuncForEachEvent(t *testing.T) {
	t.Parallel()

	input := lines(
		`{"Action":"start","Package":"p"}`,
		`garbage`,
		`{"Action":"pass","Package":"p","Test":"TestA","Elapsed":0.01}`,
	)

	var events []TestEvent
	malformed, err := Stream(context.Background(), strings.NewReader(input), func(e TestEvent) {
		events = append(events, e)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, malformed)
	require.Len(t, events, 2)
	assert.Equal(t, "TestA", events[1].Test)
}

// blockingReader never returns from Read until closed, like a stalled pipe.
type blockingReader struct {
	done chan struct{}
}

func (b *blockingReader) Read([]byte) (int, error) {
	<-b.done
	return 0, io.EOF
}

func (b *blockingReader) Close() error {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
	return nil
}

func TestStream_CancelUnblocksBlockedReader(t *testing.T) {
	t.Parallel()

	br := &blockingReader{done: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		_, err := Stream(ctx, br, func(TestEvent) {})
		errc <- err
	}()

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after context cancellation")
	}
}

func TestTestEvent_TopLevel(t *testing.T) {
	t.Parallel()

	assert.True(t, TestEvent{Test: "TestA"}.TopLevel())
	assert.False(t, TestEvent{Test: "TestA/sub"}.TopLevel())
	assert.False(t, TestEvent{}.TopLevel())
}
