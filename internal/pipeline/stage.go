package pipeline

import (
	"context"
	"fmt"
	"time"
)

// StageStatus represents runtime state.
type StageStatus int

const (
	StagePending StageStatus = iota
	StageRunning
	StageSuccess
	StageFailed
)

// Stage is one step of the pipeline.
type Stage struct {
	Group string
	Name  string
	Run   func(ctx context.Context) error
}

// Label is "group/name".
func (s Stage) Label() string {
	return s.Group + "/" + s.Name
}

// State is the execution state of a stage.
type State struct {
	Stage      Stage
	Status     StageStatus
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns elapsed time.
func (s *State) Duration() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Update describes a state change for the views. Updates carry copies so
// views never share memory with the runner goroutine.
type Update struct {
	Index      int
	Status     StageStatus
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// apply folds u into s.
func (s *State) apply(u Update) {
	s.Status = u.Status
	if !u.StartedAt.IsZero() {
		s.StartedAt = u.StartedAt
	}
	if !u.FinishedAt.IsZero() {
		s.FinishedAt = u.FinishedAt
		s.Err = u.Err
	}
}

// Start runs stages one at a time in a goroutine and streams updates. A
// failing stage does not stop later ones; a cancelled context does. The
// returned states belong to the caller and are only changed by apply.
func Start(ctx context.Context, stages []Stage) ([]*State, <-chan Update) {
	states := make([]*State, len(stages))
	for i, st := range stages {
		states[i] = &State{Stage: st, Status: StagePending}
	}

	updates := make(chan Update)
	go func() {
		defer close(updates)
		for i, st := range stages {
			if ctx.Err() != nil {
				return
			}
			started := time.Now()
			updates <- Update{Index: i, Status: StageRunning, StartedAt: started}

			err := runStage(ctx, st)
			status := StageSuccess
			if err != nil {
				status = StageFailed
			}
			updates <- Update{Index: i, Status: status, Err: err, FinishedAt: time.Now()}
		}
	}()
	return states, updates
}

func runStage(ctx context.Context, st Stage) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("stage panicked: %v", p)
		}
	}()
	return st.Run(ctx)
}
