package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/coursetree/internal/canonical"
	"github.com/roach88/coursetree/internal/tree"
)

// Snapshot is what a golden file records for a scenario: the step outcomes
// and the final document.
type Snapshot struct {
	Scenario string        `json:"scenario"`
	Steps    []StepOutcome `json:"steps"`
	Document tree.Document `json:"document"`
}

// GoldenBytes renders result as canonical JSON indented by two spaces, so
// key order is fixed and diffs stay readable.
func GoldenBytes(name string, result *Result) ([]byte, error) {
	raw, err := canonical.Marshal(Snapshot{
		Scenario: name,
		Steps:    result.Steps,
		Document: tree.ToDocument(result.Final.Track),
	})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario, fails t on any scenario mismatch, and
// compares the outcome with testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := GoldenBytes(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
