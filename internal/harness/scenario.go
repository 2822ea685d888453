package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/question"
	"github.com/roach88/coursetree/internal/tree"
)

// Scenario is one mutation script with its expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// IDPrefix seeds the id generator for created nodes. Default "n".
	IDPrefix string `yaml:"id_prefix,omitempty"`

	// Seed is the stored document the session opens.
	Seed tree.Document `yaml:"seed"`

	// Steps are submitted in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final acknowledged track.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one mutation plus its expected outcome.
type Step struct {
	Op   string         `yaml:"op"`
	Args map[string]any `yaml:"args,omitempty"`

	// ExpectError is the fault code the step must fail with. Empty means
	// the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Envelope converts the step into a mutation envelope.
func (s Step) Envelope() (tree.Envelope, error) {
	e := tree.Envelope{Op: s.Op}
	if s.Args != nil {
		raw, err := json.Marshal(s.Args)
		if err != nil {
			return e, fmt.Errorf("%s: args are not representable as JSON: %w", s.Op, err)
		}
		e.Args = raw
	}
	return e, nil
}

// Assertion checks one property of the final track.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Question addresses the question for ids, correct and kind.
	Question *tree.QuestionRef `yaml:"question,omitempty"`

	// Collection names the choice collection for ids.
	Collection question.Collection `yaml:"collection,omitempty"`

	// Expect is the expected list for ids and correct.
	Expect []string `yaml:"expect,omitempty"`

	// Kind is the expected variant for kind.
	Kind question.Kind `yaml:"kind,omitempty"`

	// Version is the expected version for version.
	Version int64 `yaml:"version,omitempty"`

	// Count is the expected number of load issues for issues.
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertIDs     = "ids"
	AssertCorrect = "correct"
	AssertKind    = "kind"
	AssertVersion = "version"
	AssertIssues  = "issues"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name. A
// non-empty filter keeps only scenarios whose name contains it.
func LoadDir(dir, filter string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var out []*Scenario
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if filter != "" && !strings.Contains(s.Name, filter) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

var knownCodes = map[string]bool{
	string(fault.CodeNotFound):            true,
	string(fault.CodeValidationFailed):    true,
	string(fault.CodeDataIntegrity):       true,
	string(fault.CodePersistenceConflict): true,
	string(fault.CodeTransport):           true,
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Seed.ID == "" {
		return fmt.Errorf("seed.id is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if step.ExpectError != "" && !knownCodes[step.ExpectError] {
			return fmt.Errorf("steps[%d]: unknown error code %q", i, step.ExpectError)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertIDs:
		if a.Question == nil || a.Collection == "" {
			return fmt.Errorf("assertions[%d]: question and collection are required for ids", index)
		}
	case AssertCorrect:
		if a.Question == nil {
			return fmt.Errorf("assertions[%d]: question is required for correct", index)
		}
	case AssertKind:
		if a.Question == nil || a.Kind == "" {
			return fmt.Errorf("assertions[%d]: question and kind are required for kind", index)
		}
	case AssertVersion:
		if a.Version < 1 {
			return fmt.Errorf("assertions[%d]: version must be positive", index)
		}
	case AssertIssues:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: a non-negative count is required for issues", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
