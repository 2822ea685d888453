package question

import (
	"slices"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/ident"
)

func choiceID(c Choice) string { return c.ID }

func relabel(c Choice, id string) Choice {
	c.ID = id
	return c
}

func choiceIDs(cs []Choice) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

func indexOf(cs []Choice, id string) int {
	return slices.IndexFunc(cs, func(c Choice) bool { return c.ID == id })
}

func renumber(cs []Choice, prefix string) ([]Choice, ident.Mapping) {
	return ident.Renumber(cs, prefix, choiceID, relabel)
}

// appendChoice returns a new slice with a freshly allocated choice at the end.
func appendChoice(cs []Choice, prefix, text, image string) ([]Choice, string) {
	id := ident.NextID(choiceIDs(cs), prefix)
	out := make([]Choice, len(cs), len(cs)+1)
	copy(out, cs)
	return append(out, Choice{ID: id, Text: text, Image: image}), id
}

func editChoice(cs []Choice, entity, id, text, image string) ([]Choice, error) {
	i := indexOf(cs, id)
	if i < 0 {
		return cs, fault.NotFound(entity, id)
	}
	out := slices.Clone(cs)
	out[i].Text = text
	out[i].Image = image
	return out, nil
}

// removeChoice drops id and renumbers the remainder. The removed id has no
// entry in the returned mapping.
func removeChoice(cs []Choice, prefix, entity, id string) ([]Choice, ident.Mapping, error) {
	i := indexOf(cs, id)
	if i < 0 {
		return cs, nil, fault.NotFound(entity, id)
	}
	out, m := renumber(ident.Remove(cs, i), prefix)
	return out, m, nil
}

func moveChoice(cs []Choice, prefix, entity, id string, to int) ([]Choice, ident.Mapping, error) {
	i := indexOf(cs, id)
	if i < 0 {
		return cs, nil, fault.NotFound(entity, id)
	}
	out, m := renumber(ident.Move(cs, i, to), prefix)
	return out, m, nil
}

// byPosition orders ids by their display position in cs. Ids not in cs
// sort last in input order.
func byPosition(ids []string, cs []Choice) []string {
	pos := make(map[string]int, len(cs))
	for i, c := range cs {
		pos[c.ID] = i
	}
	out := slices.Clone(ids)
	slices.SortStableFunc(out, func(a, b string) int {
		pa, aok := pos[a]
		pb, bok := pos[b]
		switch {
		case aok && bok:
			return pa - pb
		case aok:
			return -1
		case bok:
			return 1
		}
		return 0
	})
	return out
}
