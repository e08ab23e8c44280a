package outcome

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

var _ Recorder = (*Collector)(nil)

// Collector accumulates records in execution order.
type Collector struct {
	mu      sync.Mutex
	records []Record
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends one outcome.
func (c *Collector) Record(name, caseID string, status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, NewRecord(name, caseID, status))
}

// Records returns a copy of everything recorded so far.
func (c *Collector) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Counts tallies records by status.
func (c *Collector) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, r := range c.Records() {
		counts[r.Status]++
	}
	return counts
}

// WriteFile overwrites path with the full record sequence.
func (c *Collector) WriteFile(path string) error {
	return WriteFile(path, c.Records())
}

// Encode writes records as an indented JSON array.
func Encode(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteFile serializes records in memory first so an encoding failure never
// truncates an existing file.
func WriteFile(path string, records []Record) error {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write results %s: %w", path, err)
	}
	return nil
}

// Decode reads a JSON array of records.
func Decode(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return records, nil
}

// ReadFile loads a result file. A missing file means no results yet and is
// not an error.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadFiles concatenates the records of several result files in order.
func ReadFiles(paths ...string) ([]Record, error) {
	var all []Record
	for _, p := range paths {
		records, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}
