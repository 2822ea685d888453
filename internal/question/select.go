package question

import (
	"slices"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/ident"
)

// Select is a single- or multi-select question.
type Select struct {
	Options []Choice
	// Correct holds option ids in display order.
	Correct       []string
	AllowMultiple bool
}

func (Select) Kind() Kind { return KindSelect }
func (Select) sealed()    {}

// AddOption appends an option and returns its id.
func (s Select) AddOption(text, image string) (Select, string) {
	var id string
	s.Options, id = appendChoice(s.Options, OptionPrefix, text, image)
	return s, id
}

// EditOption replaces an option's text and image.
func (s Select) EditOption(id, text, image string) (Select, error) {
	opts, err := editChoice(s.Options, "option", id, text, image)
	if err != nil {
		return s, err
	}
	s.Options = opts
	return s, nil
}

// RemoveOption removes an option, renumbers the rest and drops it from the
// correct set.
func (s Select) RemoveOption(id string) (Select, error) {
	opts, m, err := removeChoice(s.Options, OptionPrefix, "option", id)
	if err != nil {
		return s, err
	}
	return s.relabeled(opts, m), nil
}

// MoveOption moves an option to display position to.
func (s Select) MoveOption(id string, to int) (Select, error) {
	opts, m, err := moveChoice(s.Options, OptionPrefix, "option", id, to)
	if err != nil {
		return s, err
	}
	return s.relabeled(opts, m), nil
}

func (s Select) relabeled(opts []Choice, m ident.Mapping) Select {
	s.Options = opts
	s.Correct = byPosition(ident.RemapSet(s.Correct, m), opts)
	return s
}

// SetCorrect replaces the correct set. Ids that are not current options are
// ignored. Marking more than one option correct when multiple answers are
// disallowed fails validation.
func (s Select) SetCorrect(ids []string) (Select, error) {
	kept := ident.RemapSet(ids, ident.Identity(choiceIDs(s.Options)))
	if !s.AllowMultiple && len(kept) > 1 {
		return s, fault.Validation("only one correct option is allowed, got %d", len(kept))
	}
	s.Correct = byPosition(kept, s.Options)
	return s, nil
}

// ToggleCorrect flips one option. In single-answer mode marking an option
// replaces the previous answer. Unknown ids are a no-op.
func (s Select) ToggleCorrect(id string) Select {
	if indexOf(s.Options, id) < 0 {
		return s
	}
	if i := slices.Index(s.Correct, id); i >= 0 {
		s.Correct = ident.Remove(s.Correct, i)
		return s
	}
	if !s.AllowMultiple {
		s.Correct = []string{id}
		return s
	}
	s.Correct = byPosition(append(slices.Clone(s.Correct), id), s.Options)
	return s
}

// SetAllowMultiple switches answer mode. Leaving multi-answer mode keeps
// only the first correct option.
func (s Select) SetAllowMultiple(allow bool) Select {
	s.AllowMultiple = allow
	if !allow && len(s.Correct) > 1 {
		s.Correct = []string{s.Correct[0]}
	}
	return s
}
