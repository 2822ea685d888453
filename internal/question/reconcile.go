package question

// Reconciliation describes how Reconcile arrived at a kind.
type Reconciliation struct {
	Declared Kind
	Derived  Kind

	// Rule is the 1-based precedence rule that matched.
	Rule int

	// Changed reports Derived != Declared.
	Changed bool

	// Fallback is set when no structural signal existed and the declared
	// kind was not recognized.
	Fallback bool
}

// Reconcile derives the kind r's populated fields structurally imply and
// returns r with that kind. No field other than Kind is touched, and
// Reconcile(Reconcile(r)) == Reconcile(r).
//
// Rules, first match wins:
//
//  1. both columns and at least one pairing: matching
//  2. items and a correct order of equal length: sequence
//  3. options and a non-empty correct set: select
//  4. an answer field, whatever its value: boolean
//  5. a recognized declared kind is kept
//  6. boolean
func Reconcile(r Record) (Record, Reconciliation) {
	rec := Reconciliation{Declared: r.Kind}
	switch {
	case len(r.Left) > 0 && len(r.Right) > 0 && len(r.CorrectMatches) > 0:
		rec.Derived, rec.Rule = KindMatching, 1
	case len(r.Items) > 0 && len(r.CorrectOrder) == len(r.Items):
		rec.Derived, rec.Rule = KindSequence, 2
	case len(r.Options) > 0 && len(r.CorrectOptions) > 0:
		rec.Derived, rec.Rule = KindSelect, 3
	case r.Answer != nil:
		rec.Derived, rec.Rule = KindBoolean, 4
	case r.Kind.Known():
		rec.Derived, rec.Rule = r.Kind, 5
	default:
		rec.Derived, rec.Rule, rec.Fallback = KindBoolean, 6, true
	}
	rec.Changed = rec.Derived != rec.Declared
	r.Kind = rec.Derived
	return r, rec
}
