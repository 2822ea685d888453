package tree

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/roach88/coursetree/internal/fault"
)

// Envelope is the wire form of a mutation: an op name plus its arguments.
// Mutation files and scenario steps are lists of envelopes.
type Envelope struct {
	Op   string          `json:"op" yaml:"op"`
	Args json.RawMessage `json:"args,omitempty" yaml:"-"`
}

// NewMutation returns the zero value of the mutation named op.
func NewMutation(op string) (Mutation, error) {
	return DecodeMutation(op, nil)
}

// Wrap builds the envelope for m.
func Wrap(m Mutation) (Envelope, error) {
	if m == nil {
		return Envelope{}, fault.Validation("no mutation")
	}
	args, err := json.Marshal(m)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Op: m.Op(), Args: args}, nil
}

// Mutation decodes the envelope.
func (e Envelope) Mutation() (Mutation, error) {
	return DecodeMutation(e.Op, e.Args)
}

// UnmarshalYAML accepts args as an ordinary YAML mapping:
//
//	- op: add_choice
//	  args: {group_id: g1, stage_id: s1, question_id: q1, collection: options, text: Paris}
func (e *Envelope) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Op   string         `yaml:"op"`
		Args map[string]any `yaml:"args"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	e.Op = raw.Op
	e.Args = nil
	if raw.Args != nil {
		args, err := json.Marshal(raw.Args)
		if err != nil {
			return fault.Validation("%s: arguments are not representable as JSON: %v", raw.Op, err)
		}
		e.Args = args
	}
	return nil
}

// MarshalYAML writes args as a mapping rather than a JSON string.
func (e Envelope) MarshalYAML() (any, error) {
	out := struct {
		Op   string         `yaml:"op"`
		Args map[string]any `yaml:"args,omitempty"`
	}{Op: e.Op}
	if len(e.Args) > 0 {
		if err := json.Unmarshal(e.Args, &out.Args); err != nil {
			return nil, err
		}
	}
	return out, nil
}
