package harness

import (
	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/tree"
)

// StepOutcome records what one step did.
type StepOutcome struct {
	Op string `json:"op"`

	// Outcome is "ok" or the fault code the step failed with.
	Outcome string `json:"outcome"`

	// Version is the acknowledged version after the step.
	Version int64 `json:"version"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step and assertion matched.
	Pass bool `json:"pass"`

	// Errors lists every mismatch. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Steps has one entry per scenario step, in order.
	Steps []StepOutcome `json:"steps"`

	// Issues are the findings from loading the seed.
	Issues []fault.Issue `json:"issues"`

	// Final is the acknowledged snapshot after the last step.
	Final tree.Snapshot `json:"-"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		Steps:  []StepOutcome{},
		Issues: []fault.Issue{},
	}
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
