// Package outcome records per-test outcomes and serializes them to the
// result file format shared by every collector.
package outcome

import "fmt"

// Status is the outcome of one executed test.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Valid reports whether s is one of the four known outcomes.
func (s Status) Valid() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusError, StatusSkipped:
		return true
	}
	return false
}

// Record is a single machine-recorded outcome. CaseID is nil when the test
// carries no test-case identifier.
type Record struct {
	CaseID *string `json:"test_case_id"`
	Name   string  `json:"test_name"`
	Status Status  `json:"status"`
}

// NewRecord builds a record; an empty caseID means untagged.
func NewRecord(name, caseID string, status Status) Record {
	r := Record{Name: name, Status: status}
	if caseID != "" {
		id := caseID
		r.CaseID = &id
	}
	return r
}

// ID returns the test-case id or "" when untagged.
func (r Record) ID() string {
	if r.CaseID == nil {
		return ""
	}
	return *r.CaseID
}

func (r Record) String() string {
	id := r.ID()
	if id == "" {
		id = "-"
	}
	return fmt.Sprintf("%s [%s] %s", r.Name, id, r.Status)
}

// Recorder is implemented by anything that accepts test outcomes. Collector
// adapters (go test, browser) only talk to this interface.
type Recorder interface {
	Record(name, caseID string, status Status)
}
