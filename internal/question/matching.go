package question

import (
	"slices"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/ident"
)

// Side selects one column of a matching question.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

func (s Side) prefix() string {
	if s == Left {
		return LeftPrefix
	}
	return RightPrefix
}

func (s Side) entity() string {
	return string(s) + " entry"
}

// Matching pairs entries of two independent columns.
type Matching struct {
	Left  []Choice
	Right []Choice
	Pairs []Pair
}

func (Matching) Kind() Kind { return KindMatching }
func (Matching) sealed()    {}

func (m Matching) column(side Side) []Choice {
	if side == Left {
		return m.Left
	}
	return m.Right
}

func (m Matching) withColumn(side Side, cs []Choice) Matching {
	if side == Left {
		m.Left = cs
	} else {
		m.Right = cs
	}
	return m
}

// AddEntry appends an entry to one column and returns its id.
func (m Matching) AddEntry(side Side, text, image string) (Matching, string) {
	cs, id := appendChoice(m.column(side), side.prefix(), text, image)
	return m.withColumn(side, cs), id
}

func (m Matching) EditEntry(side Side, id, text, image string) (Matching, error) {
	cs, err := editChoice(m.column(side), side.entity(), id, text, image)
	if err != nil {
		return m, err
	}
	return m.withColumn(side, cs), nil
}

// RemoveEntry removes an entry and every pair that referenced it.
func (m Matching) RemoveEntry(side Side, id string) (Matching, error) {
	cs, mapping, err := removeChoice(m.column(side), side.prefix(), side.entity(), id)
	if err != nil {
		return m, err
	}
	return m.relabeled(side, cs, mapping), nil
}

func (m Matching) MoveEntry(side Side, id string, to int) (Matching, error) {
	cs, mapping, err := moveChoice(m.column(side), side.prefix(), side.entity(), id, to)
	if err != nil {
		return m, err
	}
	return m.relabeled(side, cs, mapping), nil
}

func (m Matching) relabeled(side Side, cs []Choice, mapping ident.Mapping) Matching {
	left, right := mapping, ident.Identity(choiceIDs(m.Right))
	if side == Right {
		left, right = ident.Identity(choiceIDs(m.Left)), mapping
	}
	m = m.withColumn(side, cs)
	m.Pairs = ident.RemapPairs(m.Pairs, left, right)
	return m
}

// AddPair records a correct pairing. Both endpoints must exist; adding an
// existing pair is a no-op.
func (m Matching) AddPair(left, right string) (Matching, error) {
	if indexOf(m.Left, left) < 0 {
		return m, fault.NotFound(Left.entity(), left)
	}
	if indexOf(m.Right, right) < 0 {
		return m, fault.NotFound(Right.entity(), right)
	}
	p := Pair{Left: left, Right: right}
	if slices.Contains(m.Pairs, p) {
		return m, nil
	}
	pairs := make([]Pair, len(m.Pairs), len(m.Pairs)+1)
	copy(pairs, m.Pairs)
	m.Pairs = append(pairs, p)
	return m, nil
}

// RemovePair drops a pairing if present.
func (m Matching) RemovePair(left, right string) Matching {
	i := slices.Index(m.Pairs, Pair{Left: left, Right: right})
	if i < 0 {
		return m
	}
	m.Pairs = ident.Remove(m.Pairs, i)
	return m
}
