package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/coursetree/internal/question"
	"github.com/roach88/coursetree/internal/tree"
)

// AssertionError describes one failed assertion.
type AssertionError struct {
	Type     string
	Target   string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s", e.Type)
	if e.Target != "" {
		fmt.Fprintf(&buf, " on %s", e.Target)
	}
	fmt.Fprintf(&buf, "\n  expected: %s\n  actual:   %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against result.Final and
// result.Issues and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertVersion:
		if got := result.Final.Version; got != a.Version {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Version), Actual: fmt.Sprint(got)}
		}
		return nil
	case AssertIssues:
		if got := len(result.Issues); got != *a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(*a.Count), Actual: fmt.Sprintf("%d %v", got, result.Issues)}
		}
		return nil
	}

	target := questionPath(*a.Question)
	q, err := result.Final.Track.Question(*a.Question)
	if err != nil {
		return &AssertionError{Type: a.Type, Target: target, Expected: "question present", Actual: err.Error()}
	}

	switch a.Type {
	case AssertKind:
		if q.Kind() != a.Kind {
			return &AssertionError{Type: a.Type, Target: target, Expected: string(a.Kind), Actual: string(q.Kind())}
		}
	case AssertIDs:
		got, err := collectionIDs(q, a.Collection)
		if err != nil {
			return &AssertionError{Type: a.Type, Target: target, Expected: fmt.Sprint(a.Expect), Actual: err.Error()}
		}
		if !slices.Equal(got, a.Expect) {
			return &AssertionError{Type: a.Type, Target: target + "/" + string(a.Collection), Expected: fmt.Sprint(a.Expect), Actual: fmt.Sprint(got)}
		}
	case AssertCorrect:
		got := correctAnswer(q)
		if !slices.Equal(got, a.Expect) {
			return &AssertionError{Type: a.Type, Target: target, Expected: fmt.Sprint(a.Expect), Actual: fmt.Sprint(got)}
		}
	}
	return nil
}

func questionPath(ref tree.QuestionRef) string {
	return ref.GroupID + "/" + ref.StageID + "/" + ref.QuestionID
}

func collectionIDs(q question.Question, c question.Collection) ([]string, error) {
	var cs []question.Choice
	switch b := q.Body.(type) {
	case question.Select:
		if c == question.Options {
			cs = b.Options
		}
	case question.Sequence:
		if c == question.Items {
			cs = b.Items
		}
	case question.Matching:
		switch c {
		case question.LeftColumn:
			cs = b.Left
		case question.RightColumn:
			cs = b.Right
		}
	}
	if cs == nil && !hasCollection(q, c) {
		return nil, fmt.Errorf("%s question has no %s", q.Kind(), c)
	}
	ids := make([]string, len(cs))
	for i, ch := range cs {
		ids[i] = ch.ID
	}
	return ids, nil
}

func hasCollection(q question.Question, c question.Collection) bool {
	switch q.Kind() {
	case question.KindSelect:
		return c == question.Options
	case question.KindSequence:
		return c == question.Items
	case question.KindMatching:
		return c == question.LeftColumn || c == question.RightColumn
	}
	return false
}

// correctAnswer renders the answer key of q as strings: correct option ids,
// the correct order, "L:R" pairs, or "true"/"false".
func correctAnswer(q question.Question) []string {
	switch b := q.Body.(type) {
	case question.Select:
		return nonNil(b.Correct)
	case question.Sequence:
		return nonNil(b.Order)
	case question.Matching:
		out := make([]string, len(b.Pairs))
		for i, p := range b.Pairs {
			out[i] = p.Left + ":" + p.Right
		}
		return out
	case question.Boolean:
		return []string{fmt.Sprint(b.Answer)}
	}
	return []string{"false"}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
