// Package resolve joins catalog definitions to recorded outcomes and decides
// one status per test case.
package resolve

import (
	"github.com/dkoosis/tcr/pkg/catalog"
	"github.com/dkoosis/tcr/pkg/outcome"
)

// Status is the resolved state of a test case.
type Status string

const (
	StatusPass           Status = "PASS"
	StatusFail           Status = "FAIL"
	StatusNotImplemented Status = "NOT_IMPLEMENTED"
	StatusManualOnly     Status = "MANUAL_ONLY"
	StatusSkipped        Status = "SKIPPED"
	StatusUnknown        Status = "UNKNOWN"
)

// Statuses lists every status in report order.
var Statuses = []Status{
	StatusPass,
	StatusFail,
	StatusNotImplemented,
	StatusManualOnly,
	StatusSkipped,
	StatusUnknown,
}

// Resolve decides the status of def given every collected record.
// The first matching rule wins:
//
//  1. manual (or manuel) cases are MANUAL_ONLY whatever the results say
//  2. an unrecognized type is UNKNOWN
//  3. no record with def.ID is NOT_IMPLEMENTED
//  4. any failed or error record is FAIL
//  5. otherwise any skipped record is SKIPPED
//  6. otherwise all passed is PASS
//  7. anything else is UNKNOWN, never PASS
func Resolve(def catalog.Definition, records []outcome.Record) Status {
	return decide(def, func() []outcome.Record { return matching(def.ID, records) })
}

// decide defers computing matches so manual cases never look at results.
func decide(def catalog.Definition, matches func() []outcome.Record) Status {
	switch def.Kind() {
	case catalog.KindManual:
		return StatusManualOnly
	case catalog.KindUnrecognized:
		return StatusUnknown
	}
	return fromMatches(matches())
}

func matching(id string, records []outcome.Record) []outcome.Record {
	var out []outcome.Record
	for _, r := range records {
		if r.CaseID != nil && *r.CaseID == id {
			out = append(out, r)
		}
	}
	return out
}

func fromMatches(matches []outcome.Record) Status {
	if len(matches) == 0 {
		return StatusNotImplemented
	}

	var skipped, passed int
	for _, r := range matches {
		switch r.Status {
		case outcome.StatusFailed, outcome.StatusError:
			return StatusFail
		case outcome.StatusSkipped:
			skipped++
		case outcome.StatusPassed:
			passed++
		}
	}
	if skipped > 0 {
		return StatusSkipped
	}
	if passed == len(matches) {
		return StatusPass
	}
	return StatusUnknown
}

// Row is one resolved catalog entry.
type Row struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Rows resolves every definition, preserving catalog order. Records for ids
// that are not in the catalog are ignored.
func Rows(defs []catalog.Definition, records []outcome.Record) []Row {
	byID := make(map[string][]outcome.Record)
	for _, r := range records {
		if r.CaseID == nil {
			continue
		}
		byID[*r.CaseID] = append(byID[*r.CaseID], r)
	}

	rows := make([]Row, 0, len(defs))
	for _, def := range defs {
		id := def.ID
		rows = append(rows, Row{
			ID:          def.ID,
			Type:        def.Type,
			Description: def.Description,
			Status:      decide(def, func() []outcome.Record { return byID[id] }),
		})
	}
	return rows
}
