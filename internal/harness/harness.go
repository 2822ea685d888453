package harness

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/session"
	"github.com/roach88/coursetree/internal/store"
	"github.com/roach88/coursetree/internal/testutil"
)

// Run executes a scenario against a fresh MemoryStore.
//
// Execution flow:
//  1. Store the seed document as is
//  2. Open a session on it (load reconciles and reports issues)
//  3. Submit every step and drive the session's Run loop
//  4. Check step outcomes and assertions against the final snapshot
//
// The returned error is reserved for harness failures (bad seed, session
// loop error); scenario mismatches are reported on the Result.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	seed, err := json.Marshal(scenario.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode seed: %w", err)
	}
	mem := store.NewMemoryStore()
	mem.Seed(scenario.Seed.ID, seed)

	prefix := scenario.IDPrefix
	if prefix == "" {
		prefix = "n"
	}
	sess, err := session.Open(ctx, mem, scenario.Seed.ID,
		session.WithLogger(session.DiscardLogger()),
		session.WithIDGenerator(testutil.NewSequenceGenerator(prefix)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed track: %w", err)
	}

	result := NewResult()
	if issues := sess.Acknowledged().Issues; len(issues) > 0 {
		result.Issues = issues
	}

	last := sess.Acknowledged().Version

	// Steps that fail to decode never reach the session; their error is
	// kept in place so outcomes stay in step order.
	pending := make([]<-chan session.Result, len(scenario.Steps))
	decodeErrs := make([]error, len(scenario.Steps))
	for i, step := range scenario.Steps {
		env, err := step.Envelope()
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		m, err := env.Mutation()
		if err != nil {
			decodeErrs[i] = err
			continue
		}
		ch, err := sess.Submit(m)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		pending[i] = ch
	}
	sess.Stop()
	if err := sess.Run(ctx); err != nil {
		return nil, fmt.Errorf("session loop: %w", err)
	}

	for i, step := range scenario.Steps {
		res := session.Result{Err: decodeErrs[i]}
		if pending[i] != nil {
			res = <-pending[i]
			last = res.Snapshot.Version
		} else {
			res.Snapshot.Version = last
		}
		outcome := "ok"
		if res.Err != nil {
			outcome = string(fault.CodeOf(res.Err))
			if outcome == "" {
				outcome = res.Err.Error()
			}
		}
		result.Steps = append(result.Steps, StepOutcome{Op: step.Op, Outcome: outcome, Version: res.Snapshot.Version})

		switch {
		case step.ExpectError == "" && res.Err != nil:
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, step.Op, res.Err))
		case step.ExpectError != "" && outcome != step.ExpectError:
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got %s", i, step.Op, step.ExpectError, outcome))
		}
	}

	result.Final = sess.Acknowledged()
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
