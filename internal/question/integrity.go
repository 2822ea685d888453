package question

import (
	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/ident"
)

// CheckIntegrity reports every invariant a typed question violates: ids
// that are not contiguous, references that do not resolve, and a kind that
// its own fields would not reconcile to. A question built only through the
// operations in this package never yields an issue.
func CheckIntegrity(q Question) []fault.Issue {
	var issues []fault.Issue
	collection := func(cs []Choice, prefix, field string) ident.Mapping {
		ids := choiceIDs(cs)
		if !ident.Contiguous(ids, prefix) {
			issues = append(issues, fault.Keptf(field, "ids %v are not contiguous", ids))
		}
		return ident.Identity(ids)
	}
	dangling := func(field string, refs, resolved []string) {
		if len(refs) != len(resolved) {
			issues = append(issues, fault.Keptf(field, "%d reference(s) do not resolve", len(refs)-len(resolved)))
		}
	}

	switch b := q.Body.(type) {
	case Select:
		m := collection(b.Options, OptionPrefix, "options")
		dangling("correct_options", b.Correct, ident.RemapSet(b.Correct, m))
		if !b.AllowMultiple && len(b.Correct) > 1 {
			issues = append(issues, fault.Keptf("correct_options", "%d options marked correct but multiple answers are disallowed", len(b.Correct)))
		}
	case Sequence:
		m := collection(b.Items, ItemPrefix, "items")
		dangling("correct_order", b.Order, ident.RemapSeq(b.Order, m))
		if !isPermutation(b.Order, choiceIDs(b.Items)) {
			issues = append(issues, fault.Keptf("correct_order", "correct order does not list each of the %d items exactly once", len(b.Items)))
		}
	case Matching:
		lm := collection(b.Left, LeftPrefix, "left")
		rm := collection(b.Right, RightPrefix, "right")
		if kept := ident.RemapPairs(b.Pairs, lm, rm); len(kept) != len(b.Pairs) {
			issues = append(issues, fault.Keptf("correct_matches", "%d pair(s) do not resolve or repeat", len(b.Pairs)-len(kept)))
		}
	}

	if _, rec := Reconcile(ToRecord(q)); rec.Changed {
		issues = append(issues, fault.Keptf("kind", "kind %s reconciles to %s", rec.Declared, rec.Derived))
	}
	return issues
}
