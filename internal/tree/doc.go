// Package tree holds the content hierarchy Track -> StageGroup -> Stage ->
// Question and the mutations authors apply to it.
//
// Trees are values. A Mutation never modifies the Track it is given: it
// walks identity-keyed lookups down to the target node, applies the local
// change and rebuilds each ancestor with the one changed child replaced.
// Sibling nodes are shared with the previous value and must be treated as
// read-only.
//
// Plan is the only entry point callers should use. It validates the
// mutation's arguments, applies it and returns the unchanged input tree on
// any failure.
package tree
