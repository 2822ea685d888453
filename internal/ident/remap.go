package ident

// Mapping maps old local ids to new ones. An id without an entry no longer
// resolves.
type Mapping map[string]string

// Pair is a reference to one element in each of two collections.
type Pair struct {
	Left  string `json:"left" yaml:"left"`
	Right string `json:"right" yaml:"right"`
}

// RemapOne rewrites a single reference. ok is false when ref was dropped.
func RemapOne(ref string, m Mapping) (string, bool) {
	next, ok := m[ref]
	return next, ok
}

// RemapSet rewrites a set of references, dropping unresolved ids and
// duplicates. Input order is kept.
func RemapSet(refs []string, m Mapping) []string {
	out := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		next, ok := m[ref]
		if !ok || seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
	}
	return out
}

// RemapSeq rewrites an ordered sequence of references, dropping unresolved
// ids.
func RemapSeq(refs []string, m Mapping) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if next, ok := m[ref]; ok {
			out = append(out, next)
		}
	}
	return out
}

// RemapPairs rewrites each side of every pair independently. A pair is
// dropped entirely when either side no longer resolves; duplicate pairs
// collapse.
func RemapPairs(pairs []Pair, left, right Mapping) []Pair {
	out := make([]Pair, 0, len(pairs))
	seen := make(map[Pair]bool, len(pairs))
	for _, p := range pairs {
		l, lok := left[p.Left]
		r, rok := right[p.Right]
		if !lok || !rok {
			continue
		}
		np := Pair{Left: l, Right: r}
		if seen[np] {
			continue
		}
		seen[np] = true
		out = append(out, np)
	}
	return out
}
