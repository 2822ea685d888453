package ident

import (
	"strconv"
	"strings"
)

// NextID returns prefix+(n+1) where n is the largest numeric suffix among
// ids carrying prefix. Ids without the prefix or with a non-numeric suffix
// are ignored, so one corrupt id cannot block allocation.
func NextID(ids []string, prefix string) string {
	highest := 0
	for _, id := range ids {
		if n, ok := Suffix(id, prefix); ok && n > highest {
			highest = n
		}
	}
	return prefix + strconv.Itoa(highest+1)
}

// Suffix parses the decimal suffix of id after prefix.
func Suffix(id, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// At returns the id at display position i (zero based).
func At(prefix string, i int) string {
	return prefix + strconv.Itoa(i+1)
}

// Renumber relabels items prefix+1..prefix+k in their existing order and
// returns the old->new mapping, identity entries included. Elements are
// never reordered. When an old id occurs twice, references to it follow the
// first occurrence.
func Renumber[T any](items []T, prefix string, id func(T) string, relabel func(T, string) T) ([]T, Mapping) {
	out := make([]T, len(items))
	m := make(Mapping, len(items))
	for i, it := range items {
		next := At(prefix, i)
		if old := id(it); old != "" {
			if _, seen := m[old]; !seen {
				m[old] = next
			}
		}
		out[i] = relabel(it, next)
	}
	return out, m
}

// RenumberIDs is Renumber over a bare id list.
func RenumberIDs(ids []string, prefix string) ([]string, Mapping) {
	return Renumber(ids, prefix,
		func(s string) string { return s },
		func(_ string, next string) string { return next },
	)
}

// Contiguous reports whether ids is exactly prefix+1..prefix+len(ids).
func Contiguous(ids []string, prefix string) bool {
	for i, id := range ids {
		if id != At(prefix, i) {
			return false
		}
	}
	return true
}

// Identity returns the mapping of every id to itself.
func Identity(ids []string) Mapping {
	m := make(Mapping, len(ids))
	for _, id := range ids {
		m[id] = id
	}
	return m
}

// Remove returns a copy of items without the element at index i.
func Remove[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// Move returns a copy of items with the element at from placed at index to.
// to is clamped to the valid range.
func Move[T any](items []T, from, to int) []T {
	to = max(0, min(to, len(items)-1))
	rest := Remove(items, from)
	out := make([]T, 0, len(items))
	out = append(out, rest[:to]...)
	out = append(out, items[from])
	return append(out, rest[to:]...)
}
