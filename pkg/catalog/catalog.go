// Package catalog loads the human-maintained list of test-case definitions.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Kind classifies a definition by how it is verified.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindAuto
	KindManual
)

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindManual:
		return "manual"
	default:
		return "unrecognized"
	}
}

// Definition is one planned test case. Type is kept verbatim so reports echo
// what the catalog author wrote.
type Definition struct {
	ID          string `yaml:"id" json:"id" validate:"required"`
	Type        string `yaml:"type" json:"type"`
	Description string `yaml:"description" json:"description"`
}

// Kind maps the raw type onto a Kind. "manuel" is accepted as an alternate
// spelling of manual.
func (d Definition) Kind() Kind {
	switch strings.ToLower(strings.TrimSpace(d.Type)) {
	case "auto", "automated":
		return KindAuto
	case "manual", "manuel":
		return KindManual
	default:
		return KindUnrecognized
	}
}

type document struct {
	Tests *[]Definition `yaml:"tests"`
}

// ParseError reports a catalog that cannot be used to build a report.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse catalog: %v", e.Err)
	}
	return fmt.Sprintf("parse catalog %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the catalog at path. It is read fresh on every call.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defs, err := Parse(bytes.NewReader(data))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	return defs, nil
}

// Parse decodes a catalog document from r.
func Parse(r io.Reader) ([]Definition, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: errors.New("empty document")}
		}
		return nil, &ParseError{Err: err}
	}
	if doc.Tests == nil {
		return nil, &ParseError{Err: errors.New(`missing "tests" key`)}
	}

	defs := *doc.Tests
	seen := make(map[string]int, len(defs))
	for i, d := range defs {
		if err := validate.Struct(d); err != nil {
			return nil, &ParseError{Err: fmt.Errorf("tests[%d]: %w", i, err)}
		}
		if j, dup := seen[d.ID]; dup {
			return nil, &ParseError{Err: fmt.Errorf("tests[%d]: duplicate id %q (first at tests[%d])", i, d.ID, j)}
		}
		seen[d.ID] = i
	}
	return defs, nil
}
