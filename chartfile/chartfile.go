// Package chartfile loads statetree charts from YAML documents.
//
// A document describes the root state; substates nest under "states":
//
//	name: door
//	history: deep
//	states:
//	  - name: closed
//	    enter: [lockTimer]
//	    events:
//	      open: {goto: [../opened]}
//	  - name: opened
//	    events:
//	      close: {goto: [../closed]}
//
// Callback fields hold names that are bound to Go functions through Funcs
// when the chart is built. Documents are checked against an embedded JSON
// schema before decoding.
package chartfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidChart is returned for documents that do not match the schema.
	ErrInvalidChart = errors.New("invalid chart document")
	// ErrUnknownFunc is returned when a callback name has no binding.
	ErrUnknownFunc = errors.New("unknown function")
)

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile("schema.json")
})

// StateSpec is the YAML form of one state and its subtree.
type StateSpec struct {
	Name       string               `yaml:"name"`
	Concurrent bool                 `yaml:"concurrent,omitempty"`
	History    string               `yaml:"history,omitempty"`
	Enter      []string             `yaml:"enter,omitempty"`
	Exit       []string             `yaml:"exit,omitempty"`
	Condition  string               `yaml:"condition,omitempty"`
	CanExit    string               `yaml:"canExit,omitempty"`
	Events     map[string]EventSpec `yaml:"events,omitempty"`
	States     []StateSpec          `yaml:"states,omitempty"`
}

// EventSpec is either the name of a Go handler or a list of goto targets.
//
//	events:
//	  ping: onPing          # handler name
//	  next: {goto: [../b]}  # transition
type EventSpec struct {
	Handler string
	Goto    []string
}

func (e *EventSpec) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Decode(&e.Handler)
	case yaml.MappingNode:
		var raw struct {
			Goto []string `yaml:"goto"`
		}
		if err := n.Decode(&raw); err != nil {
			return err
		}
		e.Goto = raw.Goto
		return nil
	default:
		return fmt.Errorf("line %d: event must be a handler name or a goto mapping", n.Line)
	}
}

func (e EventSpec) MarshalYAML() (any, error) {
	if len(e.Goto) > 0 {
		return map[string][]string{"goto": e.Goto}, nil
	}
	return e.Handler, nil
}

// Parse validates a YAML document against the chart schema and decodes it.
func Parse(data []byte) (*StateSpec, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var spec StateSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return &spec, nil
}

// Load reads and parses a chart file.
func Load(path string) (*StateSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Validate checks a YAML document against the embedded JSON schema.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile chart schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChart, err)
	}
	// round trip through JSON so the validator sees JSON types only
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChart, err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChart, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChart, err)
	}
	return nil
}

// Marshal encodes spec as YAML.
func Marshal(spec *StateSpec) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
