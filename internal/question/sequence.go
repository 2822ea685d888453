package question

import (
	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/ident"
)

// Sequence asks for items to be put in order. Order always holds every item
// id exactly once.
type Sequence struct {
	Items []Choice
	Order []string
}

func (Sequence) Kind() Kind { return KindSequence }
func (Sequence) sealed()    {}

// AddItem appends an item; it goes last in the correct order as well.
func (s Sequence) AddItem(text, image string) (Sequence, string) {
	var id string
	s.Items, id = appendChoice(s.Items, ItemPrefix, text, image)
	order := make([]string, len(s.Order), len(s.Order)+1)
	copy(order, s.Order)
	s.Order = append(order, id)
	return s, id
}

func (s Sequence) EditItem(id, text, image string) (Sequence, error) {
	items, err := editChoice(s.Items, "item", id, text, image)
	if err != nil {
		return s, err
	}
	s.Items = items
	return s, nil
}

func (s Sequence) RemoveItem(id string) (Sequence, error) {
	items, m, err := removeChoice(s.Items, ItemPrefix, "item", id)
	if err != nil {
		return s, err
	}
	s.Items = items
	s.Order = ident.RemapSeq(s.Order, m)
	return s, nil
}

// MoveItem changes where an item is displayed. The correct order follows
// the item, not the position.
func (s Sequence) MoveItem(id string, to int) (Sequence, error) {
	items, m, err := moveChoice(s.Items, ItemPrefix, "item", id, to)
	if err != nil {
		return s, err
	}
	s.Items = items
	s.Order = ident.RemapSeq(s.Order, m)
	return s, nil
}

// SetOrder replaces the correct order. ids must be a permutation of the
// item ids.
func (s Sequence) SetOrder(ids []string) (Sequence, error) {
	if !isPermutation(ids, choiceIDs(s.Items)) {
		return s, fault.Validation("correct order must list each of the %d items exactly once", len(s.Items))
	}
	s.Order = append([]string(nil), ids...)
	return s, nil
}

func isPermutation(order, ids []string) bool {
	if len(order) != len(ids) {
		return false
	}
	want := ident.Identity(ids)
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if _, ok := want[id]; !ok || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}
