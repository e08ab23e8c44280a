// Package detect sniffs input to tell a result file from a raw go test -json
// capture.
package detect

import (
	"bytes"
	"encoding/json"
)

// Format represents a recognized input format.
type Format int

const (
	Unknown    Format = iota
	ResultFile        // JSON array of result records
	GoTestJSON        // go test -json NDJSON stream
)

func (f Format) String() string {
	switch f {
	case ResultFile:
		return "result file"
	case GoTestJSON:
		return "go test -json"
	default:
		return "unknown"
	}
}

// Sniff examines the start of data to determine its format. data must hold
// at least the first line.
func Sniff(data []byte) Format {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return Unknown
	}
	switch data[0] {
	case '[':
		return ResultFile
	case '{':
		if isGoTestJSON(data) {
			return GoTestJSON
		}
	}
	return Unknown
}

var validActions = map[string]bool{
	"start": true, "run": true, "pause": true, "cont": true,
	"pass": true, "bench": true, "fail": true, "output": true, "skip": true,
}

func isGoTestJSON(data []byte) bool {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[:i]
	}
	var event struct {
		Action  string `json:"Action"`
		Package string `json:"Package"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return false
	}
	return validActions[event.Action]
}
