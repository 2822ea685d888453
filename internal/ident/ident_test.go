package ident

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		prefix string
		want   string
	}{
		{"empty", nil, "", "1"},
		{"empty prefixed", nil, "L", "L1"},
		{"contiguous", []string{"1", "2", "3"}, "", "4"},
		{"gap uses max", []string{"1", "7", "3"}, "", "8"},
		{"prefixed", []string{"R1", "R2"}, "R", "R3"},
		{"malformed ignored", []string{"1", "x9", "", "2b"}, "", "2"},
		{"foreign prefix ignored", []string{"L4", "R1"}, "R", "R2"},
		{"only corrupt", []string{"abc"}, "", "1"},
		{"overflow ignored", []string{"99999999999999999999999", "2"}, "", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextID(tt.ids, tt.prefix))
		})
	}
}

func TestRenumberIDs_PreservesOrder(t *testing.T) {
	ids, m := RenumberIDs([]string{"2", "3", "9"}, "")
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.Equal(t, Mapping{"2": "1", "3": "2", "9": "3"}, m)
}

func TestRenumber_IdentityEntriesIncluded(t *testing.T) {
	_, m := RenumberIDs([]string{"L1", "L3"}, "L")
	assert.Equal(t, Mapping{"L1": "L1", "L3": "L2"}, m)
}

func TestRenumber_DuplicateOldIDsFollowFirst(t *testing.T) {
	ids, m := RenumberIDs([]string{"1", "1", "2"}, "")
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.Equal(t, "1", m["1"])
	assert.Equal(t, "3", m["2"])
}

func TestRenumber_Generic(t *testing.T) {
	type opt struct{ id, text string }
	in := []opt{{"5", "a"}, {"2", "b"}}
	out, m := Renumber(in, "",
		func(o opt) string { return o.id },
		func(o opt, id string) opt { o.id = id; return o },
	)
	assert.Equal(t, []opt{{"1", "a"}, {"2", "b"}}, out)
	assert.Equal(t, Mapping{"5": "1", "2": "2"}, m)
	assert.Equal(t, "5", in[0].id, "input must not be modified")
}

func TestContiguous(t *testing.T) {
	assert.True(t, Contiguous(nil, ""))
	assert.True(t, Contiguous([]string{"L1", "L2"}, "L"))
	assert.False(t, Contiguous([]string{"L2"}, "L"))
	assert.False(t, Contiguous([]string{"1", "3"}, ""))
}

func TestRemapSet(t *testing.T) {
	m := Mapping{"2": "1", "3": "2"}
	assert.Equal(t, []string{"1"}, RemapSet([]string{"2", "1"}, m))
	assert.Equal(t, []string{"2", "1"}, RemapSet([]string{"3", "2", "3"}, m))
	assert.Empty(t, RemapSet([]string{"1"}, m))
}

func TestRemapSeq(t *testing.T) {
	m := Mapping{"1": "2", "2": "1"}
	assert.Equal(t, []string{"1", "2"}, RemapSeq([]string{"2", "1", "3"}, m))
}

func TestRemapOne(t *testing.T) {
	got, ok := RemapOne("3", Mapping{"3": "2"})
	assert.True(t, ok)
	assert.Equal(t, "2", got)
	_, ok = RemapOne("1", Mapping{"3": "2"})
	assert.False(t, ok)
}

func TestRemapPairs_DropsWholePairWhenEitherSideGone(t *testing.T) {
	pairs := []Pair{{"L1", "R1"}, {"L2", "R2"}}

	// Remove L1: remaining left [L2] renumbers to [L1].
	_, left := RenumberIDs([]string{"L2"}, "L")
	right := Identity([]string{"R1", "R2"})
	assert.Equal(t, []Pair{{"L1", "R2"}}, RemapPairs(pairs, left, right))

	// Remove R2 instead.
	_, right = RenumberIDs([]string{"R1"}, "R")
	left = Identity([]string{"L1", "L2"})
	assert.Equal(t, []Pair{{"L1", "R1"}}, RemapPairs(pairs, left, right))
}

func TestRemapPairs_Dedupes(t *testing.T) {
	m := Mapping{"L1": "L1", "L2": "L1"}
	r := Identity([]string{"R1"})
	assert.Equal(t, []Pair{{"L1", "R1"}}, RemapPairs([]Pair{{"L1", "R1"}, {"L2", "R1"}}, m, r))
}

func TestMoveAndRemove(t *testing.T) {
	in := []string{"a", "b", "c"}
	assert.Equal(t, []string{"b", "c", "a"}, Move(in, 0, 2))
	assert.Equal(t, []string{"c", "a", "b"}, Move(in, 2, 0))
	assert.Equal(t, []string{"a", "c", "b"}, Move(in, 1, 99))
	assert.Equal(t, []string{"a", "c"}, Remove(in, 1))
	assert.Equal(t, []string{"a", "b", "c"}, in)
}

// Any sequence of add/remove keeps ids unique and contiguous, and a
// reference set remapped alongside never dangles.
func TestAddRemoveSequence_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var ids []string
	var refs []string
	for step := 0; step < 500; step++ {
		if len(ids) == 0 || rng.Intn(3) > 0 {
			next := NextID(ids, "R")
			ids = append(ids, next)
			if rng.Intn(2) == 0 {
				refs = append(refs, next)
			}
		} else {
			i := rng.Intn(len(ids))
			var m Mapping
			ids, m = RenumberIDs(Remove(ids, i), "R")
			refs = RemapSet(refs, m)
		}

		require.True(t, Contiguous(ids, "R"), "step %d: %v", step, ids)
		present := Identity(ids)
		for _, r := range refs {
			_, ok := present[r]
			require.True(t, ok, "step %d: dangling %s", step, r)
		}
	}
}
