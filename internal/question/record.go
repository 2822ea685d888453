package question

import (
	"slices"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/ident"
)

// Record is the flat persisted form of a question. Every variant's fields
// live side by side; Kind may be stale or unknown.
type Record struct {
	ID                string    `json:"id" yaml:"id"`
	Kind              Kind      `json:"kind,omitempty" yaml:"kind,omitempty"`
	Prompt            string    `json:"prompt" yaml:"prompt"`
	PromptImage       string    `json:"prompt_image,omitempty" yaml:"prompt_image,omitempty"`
	CorrectFeedback   *Feedback `json:"correct_feedback,omitempty" yaml:"correct_feedback,omitempty"`
	IncorrectFeedback *Feedback `json:"incorrect_feedback,omitempty" yaml:"incorrect_feedback,omitempty"`

	Answer    *bool  `json:"answer,omitempty" yaml:"answer,omitempty"`
	Statement string `json:"statement,omitempty" yaml:"statement,omitempty"`

	Options        []Choice `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectOptions []string `json:"correct_options,omitempty" yaml:"correct_options,omitempty"`
	AllowMultiple  bool     `json:"allow_multiple,omitempty" yaml:"allow_multiple,omitempty"`

	Items        []Choice `json:"items,omitempty" yaml:"items,omitempty"`
	CorrectOrder []string `json:"correct_order,omitempty" yaml:"correct_order,omitempty"`

	Left           []Choice `json:"left,omitempty" yaml:"left,omitempty"`
	Right          []Choice `json:"right,omitempty" yaml:"right,omitempty"`
	CorrectMatches []Pair   `json:"correct_matches,omitempty" yaml:"correct_matches,omitempty"`
}

// ToRecord flattens q. Only the active variant's fields are written, so the
// result always reconciles to q's own kind.
func ToRecord(q Question) Record {
	r := Record{
		ID:                q.ID,
		Kind:              q.Kind(),
		Prompt:            q.Prompt,
		PromptImage:       q.PromptImage,
		CorrectFeedback:   cloneFeedback(q.CorrectFeedback),
		IncorrectFeedback: cloneFeedback(q.IncorrectFeedback),
	}
	switch b := q.Body.(type) {
	case Select:
		r.Options = slices.Clone(b.Options)
		r.CorrectOptions = slices.Clone(b.Correct)
		r.AllowMultiple = b.AllowMultiple
	case Sequence:
		r.Items = slices.Clone(b.Items)
		r.CorrectOrder = slices.Clone(b.Order)
	case Matching:
		r.Left = slices.Clone(b.Left)
		r.Right = slices.Clone(b.Right)
		r.CorrectMatches = slices.Clone(b.Pairs)
	case Boolean:
		answer := b.Answer
		r.Answer = &answer
		r.Statement = b.Statement
	default:
		answer := false
		r.Answer = &answer
	}
	return r
}

// FromRecord reconciles r and converts it to a typed question, repairing
// what can be repaired. Every deviation from a clean record is reported as
// an issue. Violations that cannot be repaired without guessing at author
// intent (two answers on a single-answer question, an order that is not a
// permutation) are kept as loaded.
func FromRecord(r Record) (Question, []fault.Issue) {
	r, rec := Reconcile(r)
	var issues []fault.Issue
	switch {
	case rec.Fallback:
		issues = append(issues, fault.Repairedf("kind",
			"no structural signal and unrecognized kind %q; defaulted to %s, needs review", rec.Declared, rec.Derived))
	case rec.Changed:
		issues = append(issues, fault.Repairedf("kind",
			"declared kind %q contradicts populated fields; reconciled to %s", rec.Declared, rec.Derived))
	}
	issues = append(issues, leftovers(r, rec.Derived)...)

	q := Question{
		ID:                r.ID,
		Prompt:            r.Prompt,
		PromptImage:       r.PromptImage,
		CorrectFeedback:   cloneFeedback(r.CorrectFeedback),
		IncorrectFeedback: cloneFeedback(r.IncorrectFeedback),
	}
	switch rec.Derived {
	case KindSelect:
		opts, m, is := loadCollection(r.Options, OptionPrefix, "options")
		issues = append(issues, is...)
		correct := ident.RemapSet(r.CorrectOptions, m)
		if n := len(r.CorrectOptions) - len(correct); n > 0 {
			issues = append(issues, fault.Repairedf("correct_options", "dropped %d unresolved or duplicate reference(s)", n))
		}
		correct = byPosition(correct, opts)
		if !r.AllowMultiple && len(correct) > 1 {
			issues = append(issues, fault.Keptf("correct_options",
				"%d options marked correct but multiple answers are disallowed", len(correct)))
		}
		q.Body = Select{Options: opts, Correct: correct, AllowMultiple: r.AllowMultiple}
	case KindSequence:
		items, m, is := loadCollection(r.Items, ItemPrefix, "items")
		issues = append(issues, is...)
		order := ident.RemapSeq(r.CorrectOrder, m)
		if n := len(r.CorrectOrder) - len(order); n > 0 {
			issues = append(issues, fault.Repairedf("correct_order", "dropped %d unresolved reference(s)", n))
		}
		if !isPermutation(order, choiceIDs(items)) {
			issues = append(issues, fault.Keptf("correct_order",
				"correct order does not list each of the %d items exactly once", len(items)))
		}
		q.Body = Sequence{Items: items, Order: order}
	case KindMatching:
		left, lm, is := loadCollection(r.Left, LeftPrefix, "left")
		issues = append(issues, is...)
		right, rm, is := loadCollection(r.Right, RightPrefix, "right")
		issues = append(issues, is...)
		pairs := ident.RemapPairs(r.CorrectMatches, lm, rm)
		if n := len(r.CorrectMatches) - len(pairs); n > 0 {
			issues = append(issues, fault.Repairedf("correct_matches", "dropped %d unresolved or duplicate pair(s)", n))
		}
		q.Body = Matching{Left: left, Right: right, Pairs: pairs}
	default:
		b := Boolean{Statement: r.Statement}
		if r.Answer != nil {
			b.Answer = *r.Answer
		}
		q.Body = b
	}
	return q, issues
}

// loadCollection renumbers a stored collection and reports when the stored
// ids were not already contiguous.
func loadCollection(cs []Choice, prefix, field string) ([]Choice, ident.Mapping, []fault.Issue) {
	out, m := renumber(cs, prefix)
	if ident.Contiguous(choiceIDs(cs), prefix) {
		return out, m, nil
	}
	return out, m, []fault.Issue{fault.Repairedf(field, "renumbered ids %v to %v", choiceIDs(cs), choiceIDs(out))}
}

// leftovers reports populated fields that belong to a variant other than
// kind. They are not carried into the typed question, so the next save of
// the track, whatever mutation triggers it, drops them from the document.
func leftovers(r Record, kind Kind) []fault.Issue {
	var fields []string
	if kind != KindSelect && (len(r.Options) > 0 || len(r.CorrectOptions) > 0) {
		fields = append(fields, "options")
	}
	if kind != KindSequence && (len(r.Items) > 0 || len(r.CorrectOrder) > 0) {
		fields = append(fields, "items")
	}
	if kind != KindMatching && (len(r.Left) > 0 || len(r.Right) > 0 || len(r.CorrectMatches) > 0) {
		fields = append(fields, "matching")
	}
	if kind != KindBoolean && (r.Answer != nil || r.Statement != "") {
		fields = append(fields, "answer")
	}
	if len(fields) == 0 {
		return nil
	}
	return []fault.Issue{fault.Repairedf("", "ignored %v fields of an inactive variant; they will be dropped from the document on the next save", fields)}
}

func cloneFeedback(f *Feedback) *Feedback {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}
